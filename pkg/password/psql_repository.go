package password

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX allows the repositories to run on either a connection pool or a
// transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresHistoryRepository implements HistoryRepository using PostgreSQL.
type PostgresHistoryRepository struct {
	db DBTX
}

// NewPostgresHistoryRepository creates a new PostgreSQL history repository.
func NewPostgresHistoryRepository(db DBTX) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Add appends a history entry.
func (r *PostgresHistoryRepository) Add(ctx context.Context, entry HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO password_history (id, account_id, hashed_password, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.AccountID, entry.HashedPassword, entry.CreatedAt)
	return err
}

// LastN returns up to n entries for the account, most recent first.
func (r *PostgresHistoryRepository) LastN(ctx context.Context, accountID uuid.UUID, n int) ([]HistoryEntry, error) {
	query := `
		SELECT id, account_id, hashed_password, created_at
		FROM password_history
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, accountID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.HashedPassword, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PostgresDictionaryRepository implements DictionaryRepository using
// PostgreSQL. The containment check is pushed into SQL so the word list
// never has to be loaded into the process.
type PostgresDictionaryRepository struct {
	db DBTX
}

// NewPostgresDictionaryRepository creates a new PostgreSQL dictionary
// repository.
func NewPostgresDictionaryRepository(db DBTX) *PostgresDictionaryRepository {
	return &PostgresDictionaryRepository{db: db}
}

// ContainsDictionaryWord reports whether the candidate contains any banned word.
func (r *PostgresDictionaryRepository) ContainsDictionaryWord(ctx context.Context, candidate string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM password_dictionary
			WHERE position(lower(word) in lower($1)) > 0
		)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, candidate).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
