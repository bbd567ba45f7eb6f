package authen

import (
	"time"

	"github.com/google/uuid"

	"github.com/veralend/identity/pkg/account"
)

// LoginRequest carries the credentials and device fingerprint of one
// login attempt.
type LoginRequest struct {
	Email       string
	Password    string
	BrowserName string
	OSVersion   string
	PrivateMode bool
	SSO         bool
}

// AccountSummary is the caller-facing view of an authenticated account,
// returned when a login handoff ticket is resolved.
type AccountSummary struct {
	ID          uuid.UUID
	Email       string
	FullName    string
	Locked      bool
	Status      string
	LastLoginAt *time.Time
}

// ToAccountSummary converts an account row to its summary view.
func ToAccountSummary(acct account.Account) AccountSummary {
	return AccountSummary{
		ID:          acct.ID,
		Email:       acct.Email,
		FullName:    acct.FullName,
		Locked:      acct.Locked,
		Status:      acct.Status.String(),
		LastLoginAt: acct.LastLoginAt,
	}
}
