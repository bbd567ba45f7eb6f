// Package usersession enforces the single-active-browser-session policy.
// At most one session row exists per account email; logins from a device
// whose fingerprint does not match the live session are refused.
package usersession

import (
	"time"

	"github.com/google/uuid"
)

// Session is the per-email device session row.
type Session struct {
	ID             uuid.UUID
	Email          string
	BrowserName    string
	OSVersion      string
	PrivateMode    bool
	LoginAttemptID string
	LastActive     time.Time
}

// LoginCheck carries the request-side fingerprint for an admission check.
type LoginCheck struct {
	Email       string
	BrowserName string
	OSVersion   string
	PrivateMode bool
	SSO         bool
}
