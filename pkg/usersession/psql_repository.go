package usersession

import (
	"context"
	"errors"

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
// has a unique index on lower(email); Upsert rides it so concurrent
// logins for one account cannot create duplicate session rows.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, email, browser_name, os_version, private_mode, login_attempt_id, last_active`

// FindByEmail returns the session for the email, if any.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session_info WHERE lower(email) = lower($1)`
	return r.scanSession(r.db.QueryRow(ctx, query, email))
}

// FindByLoginAttemptID returns the session holding the attempt id.
func (r *PostgresRepository) FindByLoginAttemptID(ctx context.Context, loginAttemptID string) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session_info WHERE login_attempt_id = $1`
	return r.scanSession(r.db.QueryRow(ctx, query, loginAttemptID))
}

// Upsert writes the single per-email session row.
func (r *PostgresRepository) Upsert(ctx context.Context, session Session) (Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	query := `
		INSERT INTO user_session_info (id, email, browser_name, os_version, private_mode, login_attempt_id, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email)
		DO UPDATE SET browser_name = EXCLUDED.browser_name,
			os_version = EXCLUDED.os_version,
			private_mode = EXCLUDED.private_mode,
			login_attempt_id = EXCLUDED.login_attempt_id,
			last_active = EXCLUDED.last_active
		RETURNING ` + sessionColumns
	return r.scanSession(r.db.QueryRow(ctx, query,
		session.ID, session.Email, session.BrowserName, session.OSVersion,
		session.PrivateMode, session.LoginAttemptID, session.LastActive))
}

// Delete removes a session by id.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_session_info WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) scanSession(row pgx.Row) (Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.Email, &sess.BrowserName, &sess.OSVersion,
		&sess.PrivateMode, &sess.LoginAttemptID, &sess.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return sess, nil
}
