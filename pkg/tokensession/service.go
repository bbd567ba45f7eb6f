package tokensession

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	idmerrors "github.com/veralend/identity/pkg/errors"
)

// Service manages the lifecycle of verification tokens.
type Service struct {
	repo        Repository
	ttl         time.Duration
	maxAttempts int
}

// NewService creates a token session service.
func NewService(repo Repository, ttl time.Duration, maxAttempts int) *Service {
	return &Service{
		repo:        repo,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

// Issue returns a live token for the account. If an ACTIVE token already
// exists for the account, regardless of purpose, its expiry is extended
// instead of inserting a second row.
func (s *Service) Issue(ctx context.Context, accountID uuid.UUID, purpose Purpose) (Token, error) {
	candidate := Token{
		AccountID: accountID,
		Token:     uuid.NewString(),
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	tok, created, err := s.repo.UpsertActive(ctx, candidate)
	if err != nil {
		return Token{}, idmerrors.InternalWrap(err, "failed to issue verification token")
	}
	if !created {
		slog.Info("refreshed existing verification token", "accountId", accountID, "purpose", tok.Purpose.String())
	}
	return tok, nil
}

// Validate resolves a raw token (opaque or base64-wrapped) and checks that
// it is live: present, unexpired, active, and under the verify-attempt
// ceiling.
func (s *Service) Validate(ctx context.Context, raw string) (Token, error) {
	tok, err := s.find(ctx, raw)
	if err != nil {
		return Token{}, err
	}

	now := time.Now().UTC()
	switch {
	case now.After(tok.ExpiresAt):
		return Token{}, idmerrors.New(idmerrors.ErrCodeTokenExpired, "token has expired")
	case tok.Status == StatusInactive:
		return Token{}, idmerrors.New(idmerrors.ErrCodeTokenInactive, "token is no longer active")
	case tok.VerifyAttempts >= s.maxAttempts:
		return Token{}, idmerrors.Newf(idmerrors.ErrCodeTokenTooManyAttempts, "token exceeded %d verification attempts", s.maxAttempts)
	}
	return tok, nil
}

// RecordVerifyAttempt increments the verify-attempt counter. Reaching the
// ceiling deactivates the token in the same repository update.
func (s *Service) RecordVerifyAttempt(ctx context.Context, raw string) error {
	tok, err := s.find(ctx, raw)
	if err != nil {
		return err
	}

	updated, err := s.repo.IncrementVerifyAttempts(ctx, tok.ID, s.maxAttempts)
	if err != nil {
		return idmerrors.InternalWrap(err, "failed to record verify attempt")
	}
	if updated.Status == StatusInactive {
		slog.Info("verification token deactivated after max attempts", "accountId", updated.AccountID)
	}
	return nil
}

// Regenerate produces a new token value and fresh expiry for an expired
// token. Regeneration is rejected while the token is still valid: callers
// must use the unexpired token they already have.
func (s *Service) Regenerate(ctx context.Context, raw string) (Token, error) {
	tok, err := s.find(ctx, raw)
	if err != nil {
		return Token{}, err
	}

	if time.Now().UTC().Before(tok.ExpiresAt) {
		return Token{}, idmerrors.New(idmerrors.ErrCodeTokenNotExpired, "token has not expired yet")
	}

	tok.Token = uuid.NewString()
	tok.ExpiresAt = time.Now().UTC().Add(s.ttl)
	if err := s.repo.UpdateTokenValue(ctx, tok.ID, tok.Token, tok.ExpiresAt); err != nil {
		return Token{}, idmerrors.InternalWrap(err, "failed to regenerate token")
	}
	return tok, nil
}

// Invalidate flips the token to INACTIVE. Used after terminal redemption.
func (s *Service) Invalidate(ctx context.Context, tok Token) error {
	if err := s.repo.SetStatus(ctx, tok.ID, StatusInactive); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return idmerrors.New(idmerrors.ErrCodeTokenNotFound, "token does not exist")
		}
		return idmerrors.InternalWrap(err, "failed to invalidate token")
	}
	return nil
}

// InvalidateActiveForAccount deactivates the account's live token, if any.
// Called on successful login so stale setup and reset links stop working.
func (s *Service) InvalidateActiveForAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.DeactivateByAccount(ctx, accountID); err != nil {
		return idmerrors.InternalWrap(err, "failed to deactivate tokens for account")
	}
	return nil
}

func (s *Service) find(ctx context.Context, raw string) (Token, error) {
	if raw == "" {
		return Token{}, idmerrors.New(idmerrors.ErrCodeTokenNotFound, "token does not exist")
	}
	tok, err := s.repo.FindByToken(ctx, DecodeRaw(raw))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return Token{}, idmerrors.New(idmerrors.ErrCodeTokenNotFound, "token does not exist")
		}
		return Token{}, idmerrors.InternalWrap(err, "failed to look up token")
	}
	return tok, nil
}
