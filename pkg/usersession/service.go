package usersession

import (
	"context"
	"errors"
	"log/slog"
	"time"

	idmerrors "github.com/veralend/identity/pkg/errors"
	"github.com/veralend/identity/pkg/utils"
)

// Guard enforces the single-active-session policy.
type Guard struct {
	repo           Repository
	sessionTimeout time.Duration
}

// NewGuard creates a session concurrency guard.
func NewGuard(repo Repository, sessionTimeout time.Duration) *Guard {
	return &Guard{
		repo:           repo,
		sessionTimeout: sessionTimeout,
	}
}

// IsLoginAllowed decides whether a login attempt may proceed. Rules are
// evaluated in order: no session; session timed out (evicted); SSO
// (existing session evicted unconditionally); any fingerprint field
// missing on either side (fail open); exact fingerprint match.
func (g *Guard) IsLoginAllowed(ctx context.Context, check LoginCheck) (bool, error) {
	session, err := g.repo.FindByEmail(ctx, check.Email)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return true, nil
		}
		return false, err
	}

	if time.Since(session.LastActive) > g.sessionTimeout {
		g.evict(ctx, session)
		return true, nil
	}

	if check.SSO {
		g.evict(ctx, session)
		return true, nil
	}

	if session.BrowserName == "" || session.OSVersion == "" ||
		check.BrowserName == "" || check.OSVersion == "" {
		slog.Warn("missing client info on login, allowing",
			"email", utils.MaskEmail(check.Email),
			"sessionBrowser", session.BrowserName,
			"sessionOs", session.OSVersion,
			"requestBrowser", check.BrowserName,
			"requestOs", check.OSVersion)
		return true, nil
	}

	allowed := session.BrowserName == check.BrowserName &&
		session.OSVersion == check.OSVersion &&
		session.PrivateMode == check.PrivateMode
	return allowed, nil
}

// CreateOrUpdateSession upserts the per-email session row with the new
// fingerprint and a fresh last-active instant. Storage errors are logged
// and swallowed: session bookkeeping must never block a login.
func (g *Guard) CreateOrUpdateSession(ctx context.Context, loginAttemptID string, check LoginCheck) {
	_, err := g.repo.Upsert(ctx, Session{
		Email:          check.Email,
		BrowserName:    check.BrowserName,
		OSVersion:      check.OSVersion,
		PrivateMode:    check.PrivateMode,
		LoginAttemptID: loginAttemptID,
		LastActive:     time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to save user session", "loginAttemptId", loginAttemptID, "err", err)
	}
}

// ClearSession deletes the session row holding the attempt id, if any.
func (g *Guard) ClearSession(ctx context.Context, loginAttemptID string) {
	session, err := g.repo.FindByLoginAttemptID(ctx, loginAttemptID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			slog.Error("failed to look up session for clearing", "loginAttemptId", loginAttemptID, "err", err)
		}
		return
	}
	g.evict(ctx, session)
}

// ResolveEmail redeems a login attempt id to its session's account email.
// Sessions inactive past the timeout are deleted and resolution fails as
// unauthorized, matching the pull-based expiry model.
func (g *Guard) ResolveEmail(ctx context.Context, loginAttemptID string) (string, error) {
	session, err := g.repo.FindByLoginAttemptID(ctx, loginAttemptID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", idmerrors.Unauthorized("no session for login attempt")
		}
		return "", idmerrors.InternalWrap(err, "failed to look up session")
	}

	if time.Since(session.LastActive) > g.sessionTimeout {
		slog.Warn("session expired on resolution",
			"loginAttemptId", loginAttemptID,
			"lastActive", session.LastActive)
		g.evict(ctx, session)
		return "", idmerrors.Unauthorized("session expired")
	}
	return session.Email, nil
}

func (g *Guard) evict(ctx context.Context, session Session) {
	if err := g.repo.Delete(ctx, session.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		slog.Error("failed to delete session", "sessionId", session.ID, "err", err)
	}
}
