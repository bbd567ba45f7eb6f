// Package loginfail records failed login attempts and answers the
// rolling-window failure count used for lockout decisions. Records are
// immutable once written and are purged when the account next logs in
// successfully.
package loginfail

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FailedLogin is a single failed-attempt record.
type FailedLogin struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	At        time.Time
}

// Ledger defines the failed-login bookkeeping operations.
type Ledger interface {
	// RecordFailure appends a failure record for the account.
	RecordFailure(ctx context.Context, accountID uuid.UUID, at time.Time) error

	// CountRecentFailures returns the number of failures for the account
	// at or after the given instant.
	CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)

	// Clear removes all failure records for the account.
	Clear(ctx context.Context, accountID uuid.UUID) error
}
