package tokensession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTokenNotFound is returned when no matching token exists.
var ErrTokenNotFound = errors.New("token not found")

// Repository defines verification token storage operations.
type Repository interface {
	// UpsertActive refreshes the expiry of the account's ACTIVE token if
	// one exists, otherwise inserts the candidate row. The operation is
	// atomic: concurrent issuance for the same account never produces
	// two live tokens. Returns the resulting row and whether it was
	// newly created.
	UpsertActive(ctx context.Context, candidate Token) (Token, bool, error)

	// FindByToken returns the token row with the given opaque value.
	FindByToken(ctx context.Context, token string) (Token, error)

	// UpdateTokenValue replaces the token value and expiry (regeneration).
	UpdateTokenValue(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error

	// IncrementVerifyAttempts bumps the attempt counter and, in the same
	// update, flips the token to inactive when the counter reaches
	// maxAttempts. Returns the updated row.
	IncrementVerifyAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (Token, error)

	// SetStatus updates the token status.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	// DeactivateByAccount flips any ACTIVE token for the account to
	// INACTIVE. A no-op when the account has no live token.
	DeactivateByAccount(ctx context.Context, accountID uuid.UUID) error
}
