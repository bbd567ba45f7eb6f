package loginattempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	idmerrors "github.com/veralend/identity/pkg/errors"
)

// Ledger issues and administers login handoff tickets.
type Ledger struct {
	repo Repository
	ttl  time.Duration
}

// NewLedger creates a ticket ledger.
func NewLedger(repo Repository, ttl time.Duration) *Ledger {
	return &Ledger{
		repo: repo,
		ttl:  ttl,
	}
}

// Issue expires any live ticket for the account and persists a new one,
// returning its id. The expiry sweep runs before the insert so the
// one-live-ticket invariant holds even if the insert fails.
func (l *Ledger) Issue(ctx context.Context, accountID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	if err := l.repo.ExpireAllByAccount(ctx, accountID, now); err != nil {
		return "", idmerrors.InternalWrap(err, "failed to expire previous login attempts")
	}

	ticket := Ticket{
		ID:        uuid.NewString(),
		AccountID: accountID,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.ttl),
		Expired:   false,
	}
	if err := l.repo.Create(ctx, ticket); err != nil {
		return "", idmerrors.InternalWrap(err, "failed to create login attempt")
	}
	return ticket.ID, nil
}

// Get returns a ticket by id for administrative inspection.
func (l *Ledger) Get(ctx context.Context, id string) (Ticket, error) {
	t, err := l.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return Ticket{}, idmerrors.NotFound("login attempt", id)
		}
		return Ticket{}, idmerrors.InternalWrap(err, "failed to load login attempt")
	}
	return t, nil
}

// Expire force-writes a ticket's expiry instant and expired flag. Unknown
// ticket ids are ignored, matching the administrative override semantics.
func (l *Ledger) Expire(ctx context.Context, id string, expiresAt time.Time, expired bool) error {
	if err := l.repo.SetExpiry(ctx, id, expiresAt, expired); err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil
		}
		return idmerrors.InternalWrap(err, "failed to expire login attempt")
	}
	return nil
}
