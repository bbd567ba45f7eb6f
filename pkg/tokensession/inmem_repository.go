package tokensession

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
type InMemoryRepository struct {
	mu      sync.Mutex
	tokens  map[uuid.UUID]Token
	byValue map[string]uuid.UUID
}

// NewInMemoryRepository creates a new in-memory token repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tokens:  make(map[uuid.UUID]Token),
		byValue: make(map[string]uuid.UUID),
	}
}

// UpsertActive refreshes the account's ACTIVE token or inserts the candidate.
func (r *InMemoryRepository) UpsertActive(ctx context.Context, candidate Token) (Token, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, tok := range r.tokens {
		if tok.AccountID == candidate.AccountID && tok.Status == StatusActive {
			tok.ExpiresAt = candidate.ExpiresAt
			r.tokens[id] = tok
			return tok, false, nil
		}
	}

	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}
	candidate.Status = StatusActive
	r.tokens[candidate.ID] = candidate
	r.byValue[candidate.Token] = candidate.ID
	return candidate, true, nil
}

// FindByToken returns the token row with the given opaque value.
func (r *InMemoryRepository) FindByToken(ctx context.Context, token string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byValue[token]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return r.tokens[id], nil
}

// UpdateTokenValue replaces the token value and expiry.
func (r *InMemoryRepository) UpdateTokenValue(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}
	delete(r.byValue, tok.Token)
	tok.Token = token
	tok.ExpiresAt = expiresAt
	r.tokens[id] = tok
	r.byValue[token] = id
	return nil
}

// IncrementVerifyAttempts bumps the counter, deactivating at maxAttempts.
func (r *InMemoryRepository) IncrementVerifyAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.tokens[id]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	tok.VerifyAttempts++
	if tok.VerifyAttempts >= maxAttempts {
		tok.Status = StatusInactive
	}
	r.tokens[id] = tok
	return tok, nil
}

// SetStatus updates the token status.
func (r *InMemoryRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}
	tok.Status = status
	r.tokens[id] = tok
	return nil
}

// DeactivateByAccount flips any ACTIVE token for the account to INACTIVE.
func (r *InMemoryRepository) DeactivateByAccount(ctx context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, tok := range r.tokens {
		if tok.AccountID == accountID && tok.Status == StatusActive {
			tok.Status = StatusInactive
			r.tokens[id] = tok
		}
	}
	return nil
}
