package loginfail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX allows the ledger to run on either a connection pool or a
// transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresLedger implements Ledger using PostgreSQL.
type PostgresLedger struct {
	db DBTX
}

// NewPostgresLedger creates a new PostgreSQL failure ledger.
func NewPostgresLedger(db DBTX) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// RecordFailure appends a failure record for the account.
func (l *PostgresLedger) RecordFailure(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	query := `
		INSERT INTO login_fail_history (id, account_id, failed_at)
		VALUES ($1, $2, $3)`
	_, err := l.db.Exec(ctx, query, uuid.New(), accountID, at)
	return err
}

// CountRecentFailures counts failures at or after the given instant.
func (l *PostgresLedger) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT count(*) FROM login_fail_history
		WHERE account_id = $1 AND failed_at >= $2`
	var count int
	if err := l.db.QueryRow(ctx, query, accountID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Clear removes all failure records for the account.
func (l *PostgresLedger) Clear(ctx context.Context, accountID uuid.UUID) error {
	query := `DELETE FROM login_fail_history WHERE account_id = $1`
	_, err := l.db.Exec(ctx, query, accountID)
	return err
}
