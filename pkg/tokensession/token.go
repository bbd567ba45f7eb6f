// Package tokensession implements purpose-scoped, expiring, bounded-retry
// verification tokens used by the password setup, password reset, and
// account unlock flows.
package tokensession

import (
	"encoding/base64"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Purpose gates which flow may redeem a token.
type Purpose int

const (
	PurposeCreate Purpose = 1
	PurposeUnlock Purpose = 2
	PurposeForgot Purpose = 3
)

// String returns the purpose name.
func (p Purpose) String() string {
	switch p {
	case PurposeCreate:
		return "CREATE"
	case PurposeUnlock:
		return "UNLOCK"
	case PurposeForgot:
		return "FORGOT"
	default:
		return "UNKNOWN"
	}
}

// Status is the token lifecycle status. A token flips active to inactive
// exactly once: redemption, explicit invalidation, or attempt exhaustion.
type Status int

const (
	StatusActive   Status = 1
	StatusInactive Status = 2
)

// Token is a verification token row.
type Token struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Token          string
	Purpose        Purpose
	Status         Status
	ExpiresAt      time.Time
	VerifyAttempts int
	CreatedAt      time.Time
}

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// DecodeRaw resolves an incoming raw token to the stored opaque value.
// Tokens travel in email links base64-wrapped; API callers may also submit
// the opaque value directly, so anything already shaped like a token is
// passed through untouched.
func DecodeRaw(raw string) string {
	if uuidRegex.MatchString(raw) {
		return raw
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return raw
	}
	return string(decoded)
}

// EncodeToken wraps the opaque token value for embedding in links.
func EncodeToken(token string) string {
	return base64.StdEncoding.EncodeToString([]byte(token))
}
