package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no matching account exists.
var ErrAccountNotFound = errors.New("account not found")

// Repository defines the credential store operations used by the
// authentication services.
type Repository interface {
	// Create inserts a new account.
	Create(ctx context.Context, acct Account) (Account, error)

	// GetByID returns the account with the given id.
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)

	// FindByEmail returns the non-deleted account matching the email,
	// compared case-insensitively.
	FindByEmail(ctx context.Context, email string) (Account, error)

	// SetLocked updates the lock flag.
	SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor string) error

	// SetStatus updates the lifecycle status.
	SetStatus(ctx context.Context, id uuid.UUID, status Status, actor string) error

	// UpdateLastLogin sets the last-login timestamp.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time, actor string) error

	// UpdatePassword stores the new hash along with the change timestamp
	// and expiration horizon.
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string, changedAt, expiresAt time.Time, actor string) error

	// ListByStatus returns all accounts with the given status. Used by
	// the dormant-account sweep.
	ListByStatus(ctx context.Context, status Status) ([]Account, error)
}
