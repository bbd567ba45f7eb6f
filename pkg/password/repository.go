package password

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry represents a password history entry. Append-only; the reuse
// check reads the most recent entries.
type HistoryEntry struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	HashedPassword string
	CreatedAt      time.Time
}

// HistoryRepository defines password history operations.
type HistoryRepository interface {
	// Add appends a history entry.
	Add(ctx context.Context, entry HistoryEntry) error

	// LastN returns up to n entries for the account, most recent first.
	LastN(ctx context.Context, accountID uuid.UUID, n int) ([]HistoryEntry, error)
}

// DictionaryRepository holds the banned word list used by the dictionary
// containment check.
type DictionaryRepository interface {
	// ContainsDictionaryWord reports whether the candidate contains any
	// banned word, compared case-insensitively.
	ContainsDictionaryWord(ctx context.Context, candidate string) (bool, error)
}
