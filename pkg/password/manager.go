// Package password implements the password policy engine: complexity,
// dictionary, identity-leakage, reuse-history, and current-password checks,
// plus hashing and persistence of accepted passwords.
package password

import (
	"context"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/veralend/identity/pkg/account"
	"github.com/veralend/identity/pkg/errors"
)

// Manager runs the password policy and persists accepted passwords.
type Manager struct {
	accountRepo    account.Repository
	historyRepo    HistoryRepository
	dictionaryRepo DictionaryRepository
	hasher         Hasher
	policy         *Policy
	reuseWindow    int
	expirationDays int
}

// NewManager creates a password manager. A nil policy gets the defaults.
func NewManager(accountRepo account.Repository, historyRepo HistoryRepository, dictionaryRepo DictionaryRepository, hasher Hasher, policy *Policy, reuseWindow, expirationDays int) *Manager {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &Manager{
		accountRepo:    accountRepo,
		historyRepo:    historyRepo,
		dictionaryRepo: dictionaryRepo,
		hasher:         hasher,
		policy:         policy,
		reuseWindow:    reuseWindow,
		expirationDays: expirationDays,
	}
}

// Hasher exposes the configured hash implementation for credential checks.
func (m *Manager) Hasher() Hasher {
	return m.hasher
}

// Validate runs the policy checks against a candidate password, failing
// fast on the first violation. currentPassword is supplied only by the
// change-password flow; pass "" for token-based setup and reset.
func (m *Manager) Validate(ctx context.Context, candidate string, acct account.Account, currentPassword string) error {
	if err := m.policy.CheckComplexity(candidate); err != nil {
		return errors.Wrap(err, errors.ErrCodePasswordComplexity, "password does not meet complexity requirements")
	}

	contains, err := m.dictionaryRepo.ContainsDictionaryWord(ctx, candidate)
	if err != nil {
		return errors.InternalWrap(err, "failed to check password dictionary")
	}
	if contains {
		return errors.New(errors.ErrCodePasswordDictionaryWord, "password contains a forbidden word")
	}

	if ContainsName(candidate, acct.FullName) {
		return errors.New(errors.ErrCodePasswordContainsName, "password must not contain your name")
	}

	if acct.HasPassword() {
		entries, err := m.historyRepo.LastN(ctx, acct.ID, m.reuseWindow)
		if err != nil {
			return errors.InternalWrap(err, "failed to load password history")
		}
		for _, entry := range entries {
			match, err := m.hasher.Verify(candidate, entry.HashedPassword)
			if err != nil {
				return errors.InternalWrap(err, "failed to compare password history")
			}
			if match {
				return errors.Newf(errors.ErrCodePasswordReused, "password matches one of the last %d passwords", m.reuseWindow)
			}
		}
	}

	if currentPassword != "" {
		match, err := m.hasher.Verify(currentPassword, acct.HashedPassword)
		if err != nil {
			return errors.InternalWrap(err, "failed to verify current password")
		}
		if !match {
			return errors.New(errors.ErrCodePasswordMismatch, "current password is incorrect")
		}
	}

	return nil
}

// SetPassword validates the candidate, hashes it, persists it on the
// account with a fresh expiration horizon, and appends a history entry.
func (m *Manager) SetPassword(ctx context.Context, acct account.Account, candidate, currentPassword, actor string) error {
	if err := m.Validate(ctx, candidate, acct, currentPassword); err != nil {
		return err
	}

	hashed, err := m.hasher.Hash(candidate)
	if err != nil {
		return errors.InternalWrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, m.expirationDays)
	if err := m.accountRepo.UpdatePassword(ctx, acct.ID, hashed, now, expiresAt, actor); err != nil {
		return errors.InternalWrap(err, "failed to store password")
	}

	if err := m.historyRepo.Add(ctx, HistoryEntry{
		AccountID:      acct.ID,
		HashedPassword: hashed,
		CreatedAt:      now,
	}); err != nil {
		return errors.InternalWrap(err, "failed to record password history")
	}
	return nil
}

// ContainsName reports whether the candidate contains any whitespace token
// of the account holder's full name. The name is accent-stripped and both
// sides are lowercased before comparison.
func ContainsName(candidate, fullName string) bool {
	if strings.TrimSpace(fullName) == "" {
		return false
	}

	lowered := strings.ToLower(candidate)
	stripped := strings.ToLower(stripAccents(fullName))
	for _, token := range strings.Fields(stripped) {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
