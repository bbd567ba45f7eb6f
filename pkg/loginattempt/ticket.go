// Package loginattempt issues and manages login handoff tickets: the
// short-lived identifiers returned by a successful credential check and
// redeemed later to resolve the authenticated account. At most one live
// ticket exists per account.
package loginattempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTicketNotFound is returned when no matching ticket exists.
var ErrTicketNotFound = errors.New("login attempt not found")

// Ticket is a login handoff ticket. Expired=true is terminal.
type Ticket struct {
	ID        string
	AccountID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	Expired   bool
}

// Repository defines handoff ticket storage.
type Repository interface {
	// ExpireAllByAccount marks every non-expired ticket for the account
	// as expired at the given instant. Must complete before a new ticket
	// is persisted so two tickets are never simultaneously live.
	ExpireAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error

	// Create persists a new ticket.
	Create(ctx context.Context, ticket Ticket) error

	// Get returns a ticket by id.
	Get(ctx context.Context, id string) (Ticket, error)

	// SetExpiry force-writes a ticket's expiry instant and expired flag.
	SetExpiry(ctx context.Context, id string, expiresAt time.Time, expired bool) error
}
