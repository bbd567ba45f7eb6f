package tokensession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX allows the repository to run on either a connection pool or a
// transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL. The schema
// carries a partial unique index on (account_id) WHERE status = active,
// which both enforces the single-active-token invariant and lets
// UpsertActive run as one atomic statement.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL token repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tokenColumns = `id, account_id, token, purpose, status, expires_at, verify_attempts, created_at`

// UpsertActive refreshes the account's ACTIVE token or inserts the candidate.
func (r *PostgresRepository) UpsertActive(ctx context.Context, candidate Token) (Token, bool, error) {
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO token_session (id, account_id, token, purpose, status, expires_at, verify_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
		ON CONFLICT (account_id) WHERE status = 1
		DO UPDATE SET expires_at = EXCLUDED.expires_at
		RETURNING ` + tokenColumns
	tok, err := r.scanToken(r.db.QueryRow(ctx, query,
		candidate.ID, candidate.AccountID, candidate.Token, int(candidate.Purpose),
		int(StatusActive), candidate.ExpiresAt, candidate.CreatedAt))
	if err != nil {
		return Token{}, false, err
	}
	created := tok.ID == candidate.ID
	return tok, created, nil
}

// FindByToken returns the token row with the given opaque value.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM token_session WHERE token = $1`
	return r.scanToken(r.db.QueryRow(ctx, query, token))
}

// UpdateTokenValue replaces the token value and expiry.
func (r *PostgresRepository) UpdateTokenValue(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	query := `UPDATE token_session SET token = $2, expires_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// IncrementVerifyAttempts bumps the counter and deactivates at maxAttempts
// in the same statement, so a token that reaches the ceiling is never
// observable as still active.
func (r *PostgresRepository) IncrementVerifyAttempts(ctx context.Context, id uuid.UUID, maxAttempts int) (Token, error) {
	query := `
		UPDATE token_session
		SET verify_attempts = verify_attempts + 1,
			status = CASE WHEN verify_attempts + 1 >= $2 THEN 2 ELSE status END
		WHERE id = $1
		RETURNING ` + tokenColumns
	return r.scanToken(r.db.QueryRow(ctx, query, id, maxAttempts))
}

// SetStatus updates the token status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE token_session SET status = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, int(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeactivateByAccount flips any ACTIVE token for the account to INACTIVE.
func (r *PostgresRepository) DeactivateByAccount(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE token_session SET status = 2 WHERE account_id = $1 AND status = 1`
	_, err := r.db.Exec(ctx, query, accountID)
	return err
}

func (r *PostgresRepository) scanToken(row pgx.Row) (Token, error) {
	var tok Token
	var purpose, status int
	err := row.Scan(&tok.ID, &tok.AccountID, &tok.Token, &purpose, &status,
		&tok.ExpiresAt, &tok.VerifyAttempts, &tok.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrTokenNotFound
		}
		return Token{}, err
	}
	tok.Purpose = Purpose(purpose)
	tok.Status = Status(status)
	return tok, nil
}
