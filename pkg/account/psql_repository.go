package account

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

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL account repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, full_name, hashed_password, locked, status,
	last_login_at, password_changed_at, password_expires_at,
	created_at, created_by, modified_at, modified_by`

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) (Account, error) {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	now := time.Now().UTC()
	if acct.Audit.CreatedAt.IsZero() {
		acct.Audit.CreatedAt = now
	}
	acct.Audit.ModifiedAt = now

	query := `
		INSERT INTO account (
			id, email, full_name, hashed_password, locked, status,
			last_login_at, password_changed_at, password_expires_at,
			created_at, created_by, modified_at, modified_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		acct.ID, acct.Email, acct.FullName, acct.HashedPassword, acct.Locked, int(acct.Status),
		acct.LastLoginAt, acct.PasswordChangedAt, acct.PasswordExpiresAt,
		acct.Audit.CreatedAt, acct.Audit.CreatedBy, acct.Audit.ModifiedAt, acct.Audit.ModifiedBy)
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

// GetByID returns an account by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindByEmail returns the non-deleted account matching the email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM account
		WHERE lower(email) = lower($1) AND status <> $2`
	return r.scanAccount(r.db.QueryRow(ctx, query, email, int(StatusDeleted)))
}

// SetLocked updates the lock flag.
func (r *PostgresRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool, actor string) error {
	query := `UPDATE account
		SET locked = $2, modified_at = now(), modified_by = $3
		WHERE id = $1`
	return r.execOne(ctx, query, id, locked, actor)
}

// SetStatus updates the lifecycle status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status, actor string) error {
	query := `UPDATE account
		SET status = $2, modified_at = now(), modified_by = $3
		WHERE id = $1`
	return r.execOne(ctx, query, id, int(status), actor)
}

// UpdateLastLogin sets the last-login timestamp.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time, actor string) error {
	query := `UPDATE account
		SET last_login_at = $2, modified_at = now(), modified_by = $3
		WHERE id = $1`
	return r.execOne(ctx, query, id, at, actor)
}

// UpdatePassword stores the new hash and timestamps.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string, changedAt, expiresAt time.Time, actor string) error {
	query := `UPDATE account
		SET hashed_password = $2, password_changed_at = $3, password_expires_at = $4,
			modified_at = now(), modified_by = $5
		WHERE id = $1`
	return r.execOne(ctx, query, id, hashedPassword, changedAt, expiresAt, actor)
}

// ListByStatus returns all accounts with the given status.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE status = $1`
	rows, err := r.db.Query(ctx, query, int(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) scanAccount(row pgx.Row) (Account, error) {
	var acct Account
	var status int
	err := row.Scan(
		&acct.ID, &acct.Email, &acct.FullName, &acct.HashedPassword, &acct.Locked, &status,
		&acct.LastLoginAt, &acct.PasswordChangedAt, &acct.PasswordExpiresAt,
		&acct.Audit.CreatedAt, &acct.Audit.CreatedBy, &acct.Audit.ModifiedAt, &acct.Audit.ModifiedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	acct.Status = Status(status)
	return acct, nil
}
