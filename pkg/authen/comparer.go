package authen

import (
	"strings"

	"github.com/veralend/identity/pkg/password"
)

// CredentialComparer checks a submitted credential against the value
// stored on the account. The login flow selects an implementation based
// on the request's SSO flag.
type CredentialComparer interface {
	Compare(submitted, stored string) (bool, error)
}

// hashComparer verifies a plaintext password against an adaptive hash.
type hashComparer struct {
	hasher password.Hasher
}

func (c hashComparer) Compare(submitted, stored string) (bool, error) {
	// Accounts that never completed password setup have no hash; treat
	// that as a plain mismatch rather than a verification error.
	if submitted == "" || stored == "" {
		return false, nil
	}
	return c.hasher.Verify(submitted, stored)
}

// ssoComparer matches an upstream-issued assertion against the stored
// value. SSO accounts store the assertion verbatim rather than a hash,
// and upstream providers are not consistent about case.
type ssoComparer struct{}

func (ssoComparer) Compare(submitted, stored string) (bool, error) {
	return strings.EqualFold(submitted, stored), nil
}
