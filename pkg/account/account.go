// Package account provides the credential store accessor: the Account
// entity and the repository used by the authentication services to look up
// and mutate user records. Accounts are never physically deleted here;
// removal is a status transition to StatusDeleted.
package account

import (
	"time"

	"github.com/google/uuid"
)

// Status is the account lifecycle status.
type Status int

const (
	StatusActive   Status = 1
	StatusInactive Status = 2
	StatusDeleted  Status = 3
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	case StatusDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// Audit holds created/modified metadata, populated explicitly by the
// services via their actor parameter.
type Audit struct {
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt time.Time
	ModifiedBy string
}

// Account represents a user record in the credential store.
type Account struct {
	ID                uuid.UUID
	Email             string
	FullName          string
	HashedPassword    string
	Locked            bool
	Status            Status
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	PasswordExpiresAt *time.Time
	Audit             Audit
}

// HasPassword reports whether the account has a password set. Freshly
// created accounts have none until the setup-password flow completes.
func (a Account) HasPassword() bool {
	return a.HashedPassword != ""
}
