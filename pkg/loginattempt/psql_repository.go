package loginattempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX allows the repository to run on either a connection pool or a
// transaction. Issue-time transactionality (expire predecessors, then
// insert) is achieved by passing a pgx.Tx here.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL ticket repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ExpireAllByAccount marks every non-expired ticket for the account as expired.
func (r *PostgresRepository) ExpireAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	query := `
		UPDATE login_attempt
		SET expired = true, expire_time = $2
		WHERE account_id = $1 AND expired = false`
	_, err := r.db.Exec(ctx, query, accountID, at)
	return err
}

// Create persists a new ticket.
func (r *PostgresRepository) Create(ctx context.Context, ticket Ticket) error {
	query := `
		INSERT INTO login_attempt (id, account_id, login_time, expire_time, expired)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, ticket.ID, ticket.AccountID, ticket.IssuedAt, ticket.ExpiresAt, ticket.Expired)
	return err
}

// Get returns a ticket by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Ticket, error) {
	query := `
		SELECT id, account_id, login_time, expire_time, expired
		FROM login_attempt WHERE id = $1`
	var t Ticket
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.AccountID, &t.IssuedAt, &t.ExpiresAt, &t.Expired)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

// SetExpiry force-writes a ticket's expiry instant and expired flag.
func (r *PostgresRepository) SetExpiry(ctx context.Context, id string, expiresAt time.Time, expired bool) error {
	query := `UPDATE login_attempt SET expire_time = $2, expired = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, expiresAt, expired)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}
