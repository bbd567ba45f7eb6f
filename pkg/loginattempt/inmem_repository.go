package loginattempt

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
type InMemoryRepository struct {
	mu      sync.Mutex
	tickets map[string]Ticket
}

// NewInMemoryRepository creates a new in-memory ticket repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tickets: make(map[string]Ticket),
	}
}

// ExpireAllByAccount marks every non-expired ticket for the account as expired.
func (r *InMemoryRepository) ExpireAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tickets {
		if t.AccountID == accountID && !t.Expired {
			t.Expired = true
			t.ExpiresAt = at
			r.tickets[id] = t
		}
	}
	return nil
}

// Create persists a new ticket.
func (r *InMemoryRepository) Create(ctx context.Context, ticket Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets[ticket.ID] = ticket
	return nil
}

// Get returns a ticket by id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return t, nil
}

// SetExpiry force-writes a ticket's expiry instant and expired flag.
func (r *InMemoryRepository) SetExpiry(ctx context.Context, id string, expiresAt time.Time, expired bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	t.ExpiresAt = expiresAt
	t.Expired = expired
	r.tickets[id] = t
	return nil
}
