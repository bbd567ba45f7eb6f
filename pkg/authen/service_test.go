package authen

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/veralend/identity/pkg/account"
	"github.com/veralend/identity/pkg/config"
	idmerrors "github.com/veralend/identity/pkg/errors"
	"github.com/veralend/identity/pkg/loginattempt"
	"github.com/veralend/identity/pkg/loginfail"
	"github.com/veralend/identity/pkg/notification"
	"github.com/veralend/identity/pkg/password"
	"github.com/veralend/identity/pkg/tokensession"
	"github.com/veralend/identity/pkg/usersession"
)

type fixture struct {
	svc        *Service
	accounts   *account.InMemoryRepository
	failures   *loginfail.InMemoryLedger
	tokenRepo  *tokensession.InMemoryRepository
	tokens     *tokensession.Service
	sessions   *usersession.InMemoryRepository
	mock       *notification.MockNotifier
	dispatcher *notification.Dispatcher
	cfg        config.AuthConfig
}

func newFixture(t *testing.T, cfg config.AuthConfig) *fixture {
	t.Helper()

	accounts := account.NewInMemoryRepository()
	failures := loginfail.NewInMemoryLedger()
	tokenRepo := tokensession.NewInMemoryRepository()
	tokens := tokensession.NewService(tokenRepo, cfg.TokenTTL(), cfg.MaxVerifyAttempts)
	ticketRepo := loginattempt.NewInMemoryRepository()
	tickets := loginattempt.NewLedger(ticketRepo, cfg.TicketTTL())
	sessions := usersession.NewInMemoryRepository()
	guard := usersession.NewGuard(sessions, cfg.SessionTimeout())

	hasher := &password.BcryptHasher{Cost: bcrypt.MinCost}
	passwords := password.NewManager(
		accounts,
		password.NewInMemoryHistoryRepository(),
		password.NewInMemoryDictionaryRepository([]string{"letmein"}),
		hasher,
		nil,
		cfg.PasswordReuseWindow,
		cfg.PasswordExpirationDays,
	)

	mock := &notification.MockNotifier{}
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, mock)
	for _, nt := range []notification.NoticeType{
		notification.SetupPasswordNotice,
		notification.ForgotPasswordNotice,
		notification.UnlockAccountNotice,
		notification.DormantWarningNotice,
		notification.AccountInactiveNotice,
		notification.PasswordExpiryNotice,
		notification.PasswordInactiveNotice,
	} {
		err := manager.RegisterNotification(nt, notification.EmailSystem, notification.NoticeTemplate{Subject: string(nt)})
		require.NoError(t, err)
	}
	dispatcher := notification.NewDispatcher(manager, 16)
	t.Cleanup(dispatcher.Close)

	svc := NewService(accounts, failures, tokens, tickets, guard, passwords, dispatcher, cfg)
	return &fixture{
		svc:        svc,
		accounts:   accounts,
		failures:   failures,
		tokenRepo:  tokenRepo,
		tokens:     tokens,
		sessions:   sessions,
		mock:       mock,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// sent drains the dispatcher and returns everything delivered so far.
func (f *fixture) sent() []notification.NotificationData {
	f.dispatcher.Close()
	return f.mock.Sent()
}

func (f *fixture) createAccount(t *testing.T, email, fullName, plaintext string) account.Account {
	t.Helper()

	acct := account.Account{
		Email:    email,
		FullName: fullName,
		Status:   account.StatusActive,
	}
	if plaintext != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
		require.NoError(t, err)
		acct.HashedPassword = string(hashed)
	}
	created, err := f.accounts.Create(context.Background(), acct)
	require.NoError(t, err)
	return created
}

func loginReq(email, pass string) LoginRequest {
	return LoginRequest{
		Email:       email,
		Password:    pass,
		BrowserName: "Firefox",
		OSVersion:   "Linux",
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessReturnsTicket", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		ticketID, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)
		assert.NotEmpty(t, ticketID)
	})

	t.Run("EmailLookupIsCaseInsensitive", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		_, err := f.svc.Login(ctx, loginReq("ALICE@Example.COM", "Correct-Horse1!"))
		assert.NoError(t, err)
	})

	t.Run("UnknownEmailFailsGenerically", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())

		_, err := f.svc.Login(ctx, loginReq("nobody@example.com", "whatever"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
	})

	t.Run("WrongPasswordFailsGenerically", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		_, err := f.svc.Login(ctx, loginReq("alice@example.com", "wrong"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
	})

	t.Run("LockedAccountRejected", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")
		require.NoError(t, f.accounts.SetLocked(ctx, acct.ID, true, "admin"))

		_, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountLocked))
	})

	t.Run("InactiveAccountRejected", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")
		require.NoError(t, f.accounts.SetStatus(ctx, acct.ID, account.StatusInactive, "admin"))

		_, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountInactive))
	})

	t.Run("SSOSkipsStatusCheckAndMatchesCaseInsensitively", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := account.Account{
			Email:          "sso@example.com",
			FullName:       "Sso User",
			HashedPassword: "Assertion-Token-XYZ",
			Status:         account.StatusActive,
			Locked:         true,
		}
		_, err := f.accounts.Create(ctx, acct)
		require.NoError(t, err)

		req := loginReq("sso@example.com", "assertion-token-xyz")
		req.SSO = true
		ticketID, err := f.svc.Login(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, ticketID)
	})

	t.Run("ActiveSessionOnOtherDeviceRejected", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		_, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)

		other := loginReq("alice@example.com", "Correct-Horse1!")
		other.BrowserName = "Chrome"
		_, err = f.svc.Login(ctx, other)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeSessionActive))

		// A concurrency refusal must not count as a credential failure.
		count, err := f.failures.CountRecentFailures(ctx, mustAccountID(t, f, "alice@example.com"), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("SameDeviceCanLogInAgain", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		first, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)
		second, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()

	t.Run("LocksAfterMaxFailuresWithinWindow", func(t *testing.T) {
		cfg := config.DefaultAuthConfig()
		cfg.MaxLoginFail = 3
		f := newFixture(t, cfg)
		acct := f.createAccount(t, "a@x.com", "Ana Lee", "Correct-Horse1!")

		for i := 0; i < 2; i++ {
			_, err := f.svc.Login(ctx, loginReq("a@x.com", "wrong"))
			assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))
		}
		_, err := f.svc.Login(ctx, loginReq("a@x.com", "wrong"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountLocked))

		got, err := f.accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.True(t, got.Locked)

		// Even the correct password is rejected once locked.
		_, err = f.svc.Login(ctx, loginReq("a@x.com", "Correct-Horse1!"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountLocked))
	})

	t.Run("FailuresOutsideWindowDoNotCount", func(t *testing.T) {
		cfg := config.DefaultAuthConfig()
		cfg.MaxLoginFail = 3
		f := newFixture(t, cfg)
		acct := f.createAccount(t, "a@x.com", "Ana Lee", "Correct-Horse1!")

		// Two stale failures well outside the rolling hour.
		stale := time.Now().UTC().Add(-2 * time.Hour)
		require.NoError(t, f.failures.RecordFailure(ctx, acct.ID, stale))
		require.NoError(t, f.failures.RecordFailure(ctx, acct.ID, stale))

		_, err := f.svc.Login(ctx, loginReq("a@x.com", "wrong"))
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAuthFailed))

		got, err := f.accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.False(t, got.Locked)
	})

	t.Run("SuccessPurgesFailureHistory", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		for i := 0; i < 3; i++ {
			_, err := f.svc.Login(ctx, loginReq("alice@example.com", "wrong"))
			require.Error(t, err)
		}

		_, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)

		count, err := f.failures.CountRecentFailures(ctx, acct.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestResolveTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsAccountSummary", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		ticketID, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)

		summary, err := f.svc.ResolveTicket(ctx, ticketID)
		require.NoError(t, err)
		assert.Equal(t, acct.ID, summary.ID)
		assert.Equal(t, "alice@example.com", summary.Email)
		assert.Equal(t, "ACTIVE", summary.Status)
	})

	t.Run("UnknownTicketUnauthorized", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())

		_, err := f.svc.ResolveTicket(ctx, uuid.NewString())
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeUnauthorized))
	})

	t.Run("ExpiredAttemptUnauthorized", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		ticketID, err := f.svc.Login(ctx, loginReq("alice@example.com", "Correct-Horse1!"))
		require.NoError(t, err)

		require.NoError(t, f.svc.ExpireLoginAttempt(ctx, ticketID, time.Now().UTC(), true))

		_, err = f.svc.ResolveTicket(ctx, ticketID)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeUnauthorized))
	})
}

func TestUpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultAuthConfig())
	acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

	tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeForgot)
	require.NoError(t, err)
	require.NoError(t, f.failures.RecordFailure(ctx, acct.ID, time.Now().UTC()))

	require.NoError(t, f.svc.UpdateLastLogin(ctx, acct.ID, "alice@example.com"))

	got, err := f.accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.LastLoginAt, time.Minute)

	_, err = f.tokens.Validate(ctx, tok.Token)
	assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive))

	count, err := f.failures.CountRecentFailures(ctx, acct.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsUnlockedAccount", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		err := f.svc.Unlock(ctx, acct.ID, "admin")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountNotLocked))
	})

	t.Run("IssuesTokenAndNotifies", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")
		require.NoError(t, f.accounts.SetLocked(ctx, acct.ID, true, SystemActor))

		require.NoError(t, f.svc.Unlock(ctx, acct.ID, "admin"))

		sent := f.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "alice@example.com", sent[0].To)
		assert.Contains(t, sent[0].Data["Link"], "token=")
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())

		err := f.svc.Unlock(ctx, uuid.New(), "admin")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountNotFound))
	})
}

func TestSetupOrResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("UnlockTokenClearsLock", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")
		require.NoError(t, f.accounts.SetLocked(ctx, acct.ID, true, SystemActor))

		tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeUnlock)
		require.NoError(t, err)

		require.NoError(t, f.svc.SetupOrResetPassword(ctx, tok.Token, "Brand-New1!", "alice@example.com"))

		got, err := f.accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.False(t, got.Locked)

		match, err := bcryptCompare(got.HashedPassword, "Brand-New1!")
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("ForgotTokenKeepsLock", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")
		require.NoError(t, f.accounts.SetLocked(ctx, acct.ID, true, SystemActor))

		tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeForgot)
		require.NoError(t, err)

		require.NoError(t, f.svc.SetupOrResetPassword(ctx, tok.Token, "Brand-New1!", "alice@example.com"))

		got, err := f.accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.True(t, got.Locked)
	})

	t.Run("TokenIsSingleUse", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeCreate)
		require.NoError(t, err)

		require.NoError(t, f.svc.SetupOrResetPassword(ctx, tok.Token, "Brand-New1!", "alice@example.com"))

		err = f.svc.SetupOrResetPassword(ctx, tok.Token, "Another-New1!", "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive))
	})

	t.Run("AcceptsBase64WrappedToken", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeCreate)
		require.NoError(t, err)

		wrapped := tokensession.EncodeToken(tok.Token)
		assert.NoError(t, f.svc.SetupOrResetPassword(ctx, wrapped, "Brand-New1!", "alice@example.com"))
	})

	t.Run("RejectsPasswordContainingName", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeForgot)
		require.NoError(t, err)

		err = f.svc.SetupOrResetPassword(ctx, tok.Token, "Alice-Pass1!", "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodePasswordContainsName))
	})

	t.Run("UnknownToken", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())

		err := f.svc.SetupOrResetPassword(ctx, uuid.NewString(), "Brand-New1!", "nobody")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenNotFound))
	})
}

func TestForgotTokenAttemptExhaustion(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultAuthConfig()
	cfg.TokenTTLSeconds = 1000
	f := newFixture(t, cfg)
	acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

	tok, err := f.tokens.Issue(ctx, acct.ID, tokensession.PurposeForgot)
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(ctx, tok.Token)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.svc.BumpTokenAttempt(ctx, tok.Token))
	}

	_, err = f.svc.ValidateToken(ctx, tok.Token)
	assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive) ||
		idmerrors.IsCode(err, idmerrors.ErrCodeTokenTooManyAttempts))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresCurrentPassword", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		err := f.svc.ChangePassword(ctx, acct.ID, "", "Brand-New1!", "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeInvalidInput))
	})

	t.Run("WrongCurrentPassword", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		err := f.svc.ChangePassword(ctx, acct.ID, "not-it", "Brand-New1!", "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodePasswordMismatch))
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Old-Pass1!")

		require.NoError(t, f.svc.ChangePassword(ctx, acct.ID, "Old-Pass1!", "Brand-New1!", "alice@example.com"))

		got, err := f.accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		require.NotNil(t, got.PasswordExpiresAt)
		assert.WithinDuration(t,
			time.Now().UTC().AddDate(0, 0, f.cfg.PasswordExpirationDays),
			*got.PasswordExpiresAt, time.Minute)
	})
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownEmailIsSilent", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())

		require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
		assert.Empty(t, f.sent())
	})

	t.Run("LockedAccount", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")
		require.NoError(t, f.accounts.SetLocked(ctx, acct.ID, true, SystemActor))

		err := f.svc.ForgotPassword(ctx, "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountLocked))
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		acct := f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")
		require.NoError(t, f.accounts.SetStatus(ctx, acct.ID, account.StatusInactive, "admin"))

		err := f.svc.ForgotPassword(ctx, "alice@example.com")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeAccountInactive))
	})

	t.Run("SendsResetLink", func(t *testing.T) {
		f := newFixture(t, config.DefaultAuthConfig())
		f.createAccount(t, "alice@example.com", "Alice Smith", "Correct-Horse1!")

		require.NoError(t, f.svc.ForgotPassword(ctx, "alice@example.com"))

		sent := f.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "alice@example.com", sent[0].To)
		assert.Contains(t, sent[0].Data["Link"], f.cfg.ForgotPasswordURL)
	})
}

func TestSweepDormantAccounts(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultAuthConfig()
	f := newFixture(t, cfg)

	daysAgo := func(d int) *time.Time {
		t := time.Now().UTC().AddDate(0, 0, -d)
		return &t
	}

	dormant := f.createAccount(t, "dormant@example.com", "Dora Mant", "Correct-Horse1!")
	require.NoError(t, f.accounts.UpdateLastLogin(ctx, dormant.ID, *daysAgo(cfg.LastLoginInactiveDays+10), "test"))

	warned := f.createAccount(t, "warned@example.com", "Wanda Warn", "Correct-Horse1!")
	require.NoError(t, f.accounts.UpdateLastLogin(ctx, warned.ID, *daysAgo(cfg.LastLoginWarningDays+2), "test"))

	fresh := f.createAccount(t, "fresh@example.com", "Frank Fresh", "Correct-Horse1!")
	require.NoError(t, f.accounts.UpdateLastLogin(ctx, fresh.ID, *daysAgo(1), "test"))

	stalePass := f.createAccount(t, "stale@example.com", "Stan Stale", "Correct-Horse1!")
	changed := *daysAgo(cfg.PasswordExpiredInactiveDays + 5)
	require.NoError(t, f.accounts.UpdatePassword(ctx, stalePass.ID, stalePass.HashedPassword, changed, changed.AddDate(0, 0, cfg.PasswordExpirationDays), "test"))
	require.NoError(t, f.accounts.UpdateLastLogin(ctx, stalePass.ID, *daysAgo(1), "test"))

	report, err := f.svc.SweepDormantAccounts(ctx, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inactivated)
	assert.Equal(t, 1, report.Warned)

	for _, tc := range []struct {
		id     uuid.UUID
		status account.Status
	}{
		{dormant.ID, account.StatusInactive},
		{warned.ID, account.StatusActive},
		{fresh.ID, account.StatusActive},
		{stalePass.ID, account.StatusInactive},
	} {
		got, err := f.accounts.GetByID(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.status, got.Status, got.Email)
	}

	assert.Len(t, f.sent(), 3)
}

func mustAccountID(t *testing.T, f *fixture, email string) uuid.UUID {
	t.Helper()
	acct, err := f.accounts.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return acct.ID
}

func bcryptCompare(hash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
