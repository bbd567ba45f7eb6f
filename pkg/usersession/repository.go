package usersession

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no matching session exists.
var ErrSessionNotFound = errors.New("session not found")

// Repository defines device session storage. Implementations must enforce
// the one-row-per-email invariant in Upsert itself (upsert-by-email, not
// read-then-write).
type Repository interface {
	// FindByEmail returns the session for the email, if any.
	FindByEmail(ctx context.Context, email string) (Session, error)

	// FindByLoginAttemptID returns the session holding the attempt id.
	FindByLoginAttemptID(ctx context.Context, loginAttemptID string) (Session, error)

	// Upsert writes the single per-email session row.
	Upsert(ctx context.Context, session Session) (Session, error)

	// Delete removes a session by id.
	Delete(ctx context.Context, id uuid.UUID) error
}
