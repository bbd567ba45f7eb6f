package password

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryHistoryRepository implements HistoryRepository using in-memory
// storage.
type InMemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]HistoryEntry
}

// NewInMemoryHistoryRepository creates a new in-memory history repository.
func NewInMemoryHistoryRepository() *InMemoryHistoryRepository {
	return &InMemoryHistoryRepository{
		entries: make(map[uuid.UUID][]HistoryEntry),
	}
}

// Add appends a history entry.
func (r *InMemoryHistoryRepository) Add(ctx context.Context, entry HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries[entry.AccountID] = append(r.entries[entry.AccountID], entry)
	return nil
}

// LastN returns up to n entries for the account, most recent first.
func (r *InMemoryHistoryRepository) LastN(ctx context.Context, accountID uuid.UUID, n int) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.entries[accountID]
	out := make([]HistoryEntry, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// InMemoryDictionaryRepository implements DictionaryRepository over a
// fixed word list.
type InMemoryDictionaryRepository struct {
	mu    sync.RWMutex
	words []string
}

// NewInMemoryDictionaryRepository creates a dictionary repository seeded
// with the given banned words.
func NewInMemoryDictionaryRepository(words []string) *InMemoryDictionaryRepository {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			lowered = append(lowered, strings.ToLower(w))
		}
	}
	return &InMemoryDictionaryRepository{words: lowered}
}

// AddWord adds a banned word to the list.
func (r *InMemoryDictionaryRepository) AddWord(word string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if word != "" {
		r.words = append(r.words, strings.ToLower(word))
	}
}

// ContainsDictionaryWord reports whether the candidate contains any banned word.
func (r *InMemoryDictionaryRepository) ContainsDictionaryWord(ctx context.Context, candidate string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowered := strings.ToLower(candidate)
	for _, w := range r.words {
		if strings.Contains(lowered, w) {
			return true, nil
		}
	}
	return false, nil
}
