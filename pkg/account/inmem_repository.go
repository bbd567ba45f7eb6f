package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[uuid.UUID]Account),
	}
}

// Create inserts a new account, assigning an id if missing.
func (r *InMemoryRepository) Create(ctx context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	now := time.Now().UTC()
	if acct.Audit.CreatedAt.IsZero() {
		acct.Audit.CreatedAt = now
	}
	acct.Audit.ModifiedAt = now
	r.accounts[acct.ID] = acct
	return acct, nil
}

// GetByID returns an account by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

// FindByEmail returns the non-deleted account matching the email.
func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if strings.EqualFold(acct.Email, email) && acct.Status != StatusDeleted {
			return acct, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

// SetLocked updates the lock flag.
func (r *InMemoryRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor string) error {
	return r.mutate(id, actor, func(acct *Account) {
		acct.Locked = locked
	})
}

// SetStatus updates the lifecycle status.
func (r *InMemoryRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status, actor string) error {
	return r.mutate(id, actor, func(acct *Account) {
		acct.Status = status
	})
}

// UpdateLastLogin sets the last-login timestamp.
func (r *InMemoryRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time, actor string) error {
	return r.mutate(id, actor, func(acct *Account) {
		t := at
		acct.LastLoginAt = &t
	})
}

// UpdatePassword stores the new hash and timestamps.
func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string, changedAt, expiresAt time.Time, actor string) error {
	return r.mutate(id, actor, func(acct *Account) {
		acct.HashedPassword = hashedPassword
		c, e := changedAt, expiresAt
		acct.PasswordChangedAt = &c
		acct.PasswordExpiresAt = &e
	})
}

// ListByStatus returns all accounts with the given status.
func (r *InMemoryRepository) ListByStatus(ctx context.Context, status Status) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Account
	for _, acct := range r.accounts {
		if acct.Status == status {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) mutate(id uuid.UUID, actor string, fn func(*Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	fn(&acct)
	acct.Audit.ModifiedAt = time.Now().UTC()
	acct.Audit.ModifiedBy = actor
	r.accounts[id] = acct
	return nil
}
