package usersession

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage keyed
// by lowercased email.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]Session
}

// NewInMemoryRepository creates a new in-memory session repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byEmail: make(map[string]Session),
	}
}

// FindByEmail returns the session for the email, if any.
func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// FindByLoginAttemptID returns the session holding the attempt id.
func (r *InMemoryRepository) FindByLoginAttemptID(ctx context.Context, loginAttemptID string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sess := range r.byEmail {
		if sess.LoginAttemptID == loginAttemptID {
			return sess, nil
		}
	}
	return Session{}, ErrSessionNotFound
}

// Upsert writes the single per-email session row.
func (r *InMemoryRepository) Upsert(ctx context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(session.Email)
	if existing, ok := r.byEmail[key]; ok {
		session.ID = existing.ID
	} else if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.byEmail[key] = session
	return session, nil
}

// Delete removes a session by id.
func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, sess := range r.byEmail {
		if sess.ID == id {
			delete(r.byEmail, key)
			return nil
		}
	}
	return ErrSessionNotFound
}
