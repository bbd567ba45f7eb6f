package loginfail

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryLedger implements Ledger using in-memory storage.
type InMemoryLedger struct {
	mu       sync.RWMutex
	failures map[uuid.UUID][]FailedLogin
}

// NewInMemoryLedger creates a new in-memory failure ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		failures: make(map[uuid.UUID][]FailedLogin),
	}
}

// RecordFailure appends a failure record for the account.
func (l *InMemoryLedger) RecordFailure(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[accountID] = append(l.failures[accountID], FailedLogin{
		ID:        uuid.New(),
		AccountID: accountID,
		At:        at,
	})
	return nil
}

// CountRecentFailures counts failures at or after the given instant.
func (l *InMemoryLedger) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, f := range l.failures[accountID] {
		if !f.At.Before(since) {
			count++
		}
	}
	return count, nil
}

// Clear removes all failure records for the account.
func (l *InMemoryLedger) Clear(ctx context.Context, accountID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, accountID)
	return nil
}
