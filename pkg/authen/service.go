// Package authen orchestrates the authentication flows: the login state
// machine, ticket resolution, account unlock, token-driven password setup
// and reset, password change, and the dormant-account sweep. It composes
// the credential store, failure ledger, token sessions, login attempt
// tickets, the session concurrency guard, the password manager, and the
// notification dispatcher.
package authen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veralend/identity/pkg/account"
	"github.com/veralend/identity/pkg/config"
	idmerrors "github.com/veralend/identity/pkg/errors"
	"github.com/veralend/identity/pkg/loginattempt"
	"github.com/veralend/identity/pkg/loginfail"
	"github.com/veralend/identity/pkg/notification"
	"github.com/veralend/identity/pkg/password"
	"github.com/veralend/identity/pkg/tokensession"
	"github.com/veralend/identity/pkg/usersession"
	"github.com/veralend/identity/pkg/utils"
)

// SystemActor is the audit actor recorded for mutations the subsystem
// performs on its own behalf, such as lock-on-failure and the sweep.
const SystemActor = "system"

// Service is the authentication orchestrator.
type Service struct {
	accounts   account.Repository
	failures   loginfail.Ledger
	tokens     *tokensession.Service
	tickets    *loginattempt.Ledger
	guard      *usersession.Guard
	passwords  *password.Manager
	dispatcher *notification.Dispatcher
	cfg        config.AuthConfig
}

// NewService wires the authentication service from its collaborators.
// dispatcher may be nil, in which case notifications are skipped.
func NewService(
	accounts account.Repository,
	failures loginfail.Ledger,
	tokens *tokensession.Service,
	tickets *loginattempt.Ledger,
	guard *usersession.Guard,
	passwords *password.Manager,
	dispatcher *notification.Dispatcher,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		accounts:   accounts,
		failures:   failures,
		tokens:     tokens,
		tickets:    tickets,
		guard:      guard,
		passwords:  passwords,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Login runs the login state machine and returns a handoff ticket id on
// success. Failure reasons are deliberately generic where a specific one
// would allow account or credential enumeration.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	acct, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			slog.Info("login failed, no such account", "email", utils.MaskEmail(req.Email))
			return "", idmerrors.AuthFailed()
		}
		return "", idmerrors.InternalWrap(err, "failed to look up account")
	}

	check := usersession.LoginCheck{
		Email:       acct.Email,
		BrowserName: req.BrowserName,
		OSVersion:   req.OSVersion,
		PrivateMode: req.PrivateMode,
		SSO:         req.SSO,
	}
	allowed, err := s.guard.IsLoginAllowed(ctx, check)
	if err != nil {
		return "", idmerrors.InternalWrap(err, "failed to check session concurrency")
	}
	if !allowed {
		return "", idmerrors.New(idmerrors.ErrCodeSessionActive, "another session is active on a different device")
	}

	if !req.SSO {
		if acct.Locked {
			return "", idmerrors.New(idmerrors.ErrCodeAccountLocked, "account is locked")
		}
		if acct.Status != account.StatusActive {
			return "", idmerrors.New(idmerrors.ErrCodeAccountInactive, "account is inactive")
		}
	}

	match, err := s.comparerFor(req.SSO).Compare(req.Password, acct.HashedPassword)
	if err != nil {
		return "", idmerrors.InternalWrap(err, "failed to verify credentials")
	}
	if !match {
		return "", s.recordLoginFailure(ctx, acct)
	}

	if err := s.failures.Clear(ctx, acct.ID); err != nil {
		return "", idmerrors.InternalWrap(err, "failed to clear login failures")
	}

	ticketID, err := s.tickets.Issue(ctx, acct.ID)
	if err != nil {
		return "", err
	}
	s.guard.CreateOrUpdateSession(ctx, ticketID, check)

	slog.Info("login succeeded", "accountId", acct.ID, "email", utils.MaskEmail(acct.Email), "sso", req.SSO)
	return ticketID, nil
}

// recordLoginFailure appends a failure record, locks the account when the
// rolling-window count reaches the threshold, and returns the rejection.
func (s *Service) recordLoginFailure(ctx context.Context, acct account.Account) error {
	now := time.Now().UTC()
	if err := s.failures.RecordFailure(ctx, acct.ID, now); err != nil {
		return idmerrors.InternalWrap(err, "failed to record login failure")
	}

	count, err := s.failures.CountRecentFailures(ctx, acct.ID, now.Add(-s.cfg.FailureWindow()))
	if err != nil {
		return idmerrors.InternalWrap(err, "failed to count login failures")
	}

	remaining := s.cfg.MaxLoginFail - count
	if remaining <= 0 {
		if err := s.accounts.SetLocked(ctx, acct.ID, true, SystemActor); err != nil {
			return idmerrors.InternalWrap(err, "failed to lock account")
		}
		slog.Warn("account locked after repeated login failures", "accountId", acct.ID, "failures", count)
		return idmerrors.New(idmerrors.ErrCodeAccountLocked, "account is locked")
	}

	slog.Info("login failed, bad credentials", "accountId", acct.ID, "remaining", remaining)
	return idmerrors.AuthFailed()
}

// ResolveTicket redeems a login handoff ticket for the authenticated
// account's summary.
func (s *Service) ResolveTicket(ctx context.Context, ticketID string) (AccountSummary, error) {
	email, err := s.guard.ResolveEmail(ctx, ticketID)
	if err != nil {
		return AccountSummary{}, err
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return AccountSummary{}, idmerrors.Unauthorized("session account no longer exists")
		}
		return AccountSummary{}, idmerrors.InternalWrap(err, "failed to load session account")
	}
	return ToAccountSummary(acct), nil
}

// UpdateLastLogin stamps the account's last-login instant, deactivates
// any live verification token, and purges its failure history.
func (s *Service) UpdateLastLogin(ctx context.Context, accountID uuid.UUID, actor string) error {
	if err := s.accounts.UpdateLastLogin(ctx, accountID, time.Now().UTC(), actor); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return idmerrors.New(idmerrors.ErrCodeAccountNotFound, "account does not exist")
		}
		return idmerrors.InternalWrap(err, "failed to update last login")
	}
	if err := s.tokens.InvalidateActiveForAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.failures.Clear(ctx, accountID); err != nil {
		return idmerrors.InternalWrap(err, "failed to clear login failures")
	}
	return nil
}

// Unlock starts the unlock flow for a locked account: an UNLOCK token is
// issued and mailed out. The lock flag itself is cleared when the token
// is redeemed through SetupOrResetPassword.
func (s *Service) Unlock(ctx context.Context, accountID uuid.UUID, actor string) error {
	acct, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if !acct.Locked {
		return idmerrors.New(idmerrors.ErrCodeAccountNotLocked, "account is not locked")
	}

	tok, err := s.tokens.Issue(ctx, acct.ID, tokensession.PurposeUnlock)
	if err != nil {
		return err
	}
	s.notifyToken(acct, tok)
	slog.Info("unlock initiated", "accountId", acct.ID, "actor", actor)
	return nil
}

// IssuePasswordToken issues a verification token for the given purpose
// and mails the corresponding link to the account holder.
func (s *Service) IssuePasswordToken(ctx context.Context, accountID uuid.UUID, purpose tokensession.Purpose) error {
	acct, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	tok, err := s.tokens.Issue(ctx, acct.ID, purpose)
	if err != nil {
		return err
	}
	s.notifyToken(acct, tok)
	return nil
}

// ValidateToken resolves and checks a raw token without consuming it.
func (s *Service) ValidateToken(ctx context.Context, raw string) (tokensession.Token, error) {
	return s.tokens.Validate(ctx, raw)
}

// BumpTokenAttempt records one verification attempt against the token.
func (s *Service) BumpTokenAttempt(ctx context.Context, raw string) error {
	return s.tokens.RecordVerifyAttempt(ctx, raw)
}

// RegenerateToken replaces an expired token's value and expiry and mails
// the fresh link. Rejected while the token is still valid.
func (s *Service) RegenerateToken(ctx context.Context, raw string) error {
	tok, err := s.tokens.Regenerate(ctx, raw)
	if err != nil {
		return err
	}

	acct, err := s.getAccount(ctx, tok.AccountID)
	if err != nil {
		return err
	}
	s.notifyToken(acct, tok)
	return nil
}

// SetupOrResetPassword redeems a verification token to set the account's
// password. Redeeming a CREATE or UNLOCK token also clears the lock flag;
// FORGOT deliberately does not, so a locked account cannot bypass the
// unlock flow through a password reset.
func (s *Service) SetupOrResetPassword(ctx context.Context, raw, newPassword, actor string) error {
	tok, err := s.tokens.Validate(ctx, raw)
	if err != nil {
		return err
	}

	acct, err := s.getAccount(ctx, tok.AccountID)
	if err != nil {
		return err
	}

	if err := s.passwords.SetPassword(ctx, acct, newPassword, "", actor); err != nil {
		return err
	}

	if acct.Locked && tok.Purpose != tokensession.PurposeForgot {
		if err := s.accounts.SetLocked(ctx, acct.ID, false, actor); err != nil {
			return idmerrors.InternalWrap(err, "failed to clear account lock")
		}
	}

	return s.tokens.Invalidate(ctx, tok)
}

// ChangePassword runs the full password policy, including confirmation of
// the current password, and stores the new one.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword, actor string) error {
	if currentPassword == "" {
		return idmerrors.New(idmerrors.ErrCodeInvalidInput, "current password is required")
	}

	acct, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	return s.passwords.SetPassword(ctx, acct, newPassword, currentPassword, actor)
}

// ExpireLoginAttempt force-writes a ticket's expiry and clears the device
// session holding it, ending the session server-side.
func (s *Service) ExpireLoginAttempt(ctx context.Context, ticketID string, expiresAt time.Time, expired bool) error {
	if err := s.tickets.Expire(ctx, ticketID, expiresAt, expired); err != nil {
		return err
	}
	s.guard.ClearSession(ctx, ticketID)
	return nil
}

// GetLoginAttempt returns a handoff ticket for administrative inspection.
func (s *Service) GetLoginAttempt(ctx context.Context, ticketID string) (loginattempt.Ticket, error) {
	return s.tickets.Get(ctx, ticketID)
}

// ForgotPassword starts the reset flow for the given email. A missing or
// deleted account is a silent no-op so the endpoint cannot be used to
// probe for registered addresses.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			slog.Info("forgot password for unknown email", "email", utils.MaskEmail(email))
			return nil
		}
		return idmerrors.InternalWrap(err, "failed to look up account")
	}

	if acct.Locked {
		return idmerrors.New(idmerrors.ErrCodeAccountLocked, "account is locked")
	}
	if acct.Status != account.StatusActive {
		return idmerrors.New(idmerrors.ErrCodeAccountInactive, "account is inactive")
	}

	tok, err := s.tokens.Issue(ctx, acct.ID, tokensession.PurposeForgot)
	if err != nil {
		return err
	}
	s.notifyToken(acct, tok)
	return nil
}

// SweepReport summarizes one housekeeping sweep.
type SweepReport struct {
	Warned      int
	Inactivated int
}

// SweepDormantAccounts walks the active accounts and applies the
// inactivity policy: accounts dormant past the warning horizon get a
// warning email, accounts dormant past the inactivation horizon are
// deactivated, and accounts whose password expired past its grace period
// are deactivated as well. Accounts with an expired password still inside
// the grace period get an expiry warning each sweep.
func (s *Service) SweepDormantAccounts(ctx context.Context, actor string) (SweepReport, error) {
	accts, err := s.accounts.ListByStatus(ctx, account.StatusActive)
	if err != nil {
		return SweepReport{}, idmerrors.InternalWrap(err, "failed to list active accounts")
	}

	var report SweepReport
	now := time.Now().UTC()
	for _, acct := range accts {
		inactivated, warned := s.sweepAccount(ctx, acct, now, actor)
		if inactivated {
			report.Inactivated++
		}
		if warned {
			report.Warned++
		}
	}

	slog.Info("dormant account sweep finished", "scanned", len(accts), "warned", report.Warned, "inactivated", report.Inactivated)
	return report, nil
}

func (s *Service) sweepAccount(ctx context.Context, acct account.Account, now time.Time, actor string) (inactivated, warned bool) {
	if acct.LastLoginAt != nil {
		dormantDays := int(now.Sub(*acct.LastLoginAt).Hours() / 24)
		switch {
		case dormantDays >= s.cfg.LastLoginInactiveDays:
			if err := s.accounts.SetStatus(ctx, acct.ID, account.StatusInactive, actor); err != nil {
				slog.Error("failed to inactivate dormant account", "accountId", acct.ID, "err", err)
				return false, false
			}
			s.notify(notification.AccountInactiveNotice, acct, nil)
			return true, false
		case dormantDays >= s.cfg.LastLoginWarningDays:
			s.notify(notification.DormantWarningNotice, acct, map[string]string{
				"RemainingDays": fmt.Sprintf("%d", s.cfg.LastLoginInactiveDays-dormantDays),
			})
			warned = true
		}
	}

	if acct.PasswordChangedAt != nil {
		passwordAgeDays := int(now.Sub(*acct.PasswordChangedAt).Hours() / 24)
		if passwordAgeDays >= s.cfg.PasswordExpiredInactiveDays {
			if err := s.accounts.SetStatus(ctx, acct.ID, account.StatusInactive, actor); err != nil {
				slog.Error("failed to inactivate account with expired password", "accountId", acct.ID, "err", err)
				return false, warned
			}
			s.notify(notification.PasswordInactiveNotice, acct, nil)
			return true, warned
		}
		if acct.PasswordExpiresAt != nil && now.After(*acct.PasswordExpiresAt) {
			s.notify(notification.PasswordExpiryNotice, acct, map[string]string{
				"ExpirationDate": acct.PasswordExpiresAt.Format("2006-01-02"),
			})
			warned = true
		}
	}
	return false, warned
}

func (s *Service) comparerFor(sso bool) CredentialComparer {
	if sso {
		return ssoComparer{}
	}
	return hashComparer{hasher: s.passwords.Hasher()}
}

func (s *Service) getAccount(ctx context.Context, accountID uuid.UUID) (account.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return account.Account{}, idmerrors.New(idmerrors.ErrCodeAccountNotFound, "account does not exist")
		}
		return account.Account{}, idmerrors.InternalWrap(err, "failed to load account")
	}
	return acct, nil
}

// notifyToken mails the link for a freshly issued or regenerated token.
// The token value travels base64-wrapped in the link.
func (s *Service) notifyToken(acct account.Account, tok tokensession.Token) {
	var noticeType notification.NoticeType
	var base string
	switch tok.Purpose {
	case tokensession.PurposeForgot:
		noticeType = notification.ForgotPasswordNotice
		base = s.cfg.ForgotPasswordURL
	case tokensession.PurposeUnlock:
		noticeType = notification.UnlockAccountNotice
		base = s.cfg.SetupPasswordURL
	default:
		noticeType = notification.SetupPasswordNotice
		base = s.cfg.SetupPasswordURL
	}

	s.notify(noticeType, acct, map[string]string{
		"Link": fmt.Sprintf("%s?token=%s", base, tokensession.EncodeToken(tok.Token)),
	})
}

// notify queues a notification for the account. Delivery is asynchronous
// and never fails the calling flow.
func (s *Service) notify(noticeType notification.NoticeType, acct account.Account, data map[string]string) {
	if s.dispatcher == nil {
		return
	}
	merged := map[string]string{
		"UserName": acct.FullName,
		"Email":    acct.Email,
	}
	for k, v := range data {
		merged[k] = v
	}
	s.dispatcher.Dispatch(noticeType, notification.EmailSystem, notification.NotificationData{
		To:   acct.Email,
		Data: merged,
	})
}
