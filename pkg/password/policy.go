package password

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Policy defines the requirements for password complexity.
type Policy struct {
	MinLength          int
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool
	MaxRepeatedChars   int
}

// DefaultPolicy returns a default password policy.
func DefaultPolicy() *Policy {
	return &Policy{
		MinLength:          8,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
		MaxRepeatedChars:   3,
	}
}

var (
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	digitRegex     = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// CheckComplexity verifies that a password meets the complexity requirements.
func (p *Policy) CheckComplexity(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	if p.RequireUppercase && !uppercaseRegex.MatchString(password) {
		return errors.New("password must contain at least one uppercase letter")
	}

	if p.RequireLowercase && !lowercaseRegex.MatchString(password) {
		return errors.New("password must contain at least one lowercase letter")
	}

	if p.RequireDigit && !digitRegex.MatchString(password) {
		return errors.New("password must contain at least one digit")
	}

	if p.RequireSpecialChar && !specialRegex.MatchString(password) {
		return errors.New("password must contain at least one special character")
	}

	if p.MaxRepeatedChars > 0 && hasRepeatedChars(password, p.MaxRepeatedChars) {
		return fmt.Errorf("password cannot contain more than %d consecutive repeated characters", p.MaxRepeatedChars)
	}

	return nil
}

func hasRepeatedChars(password string, maxRepeated int) bool {
	for i := 0; i < len(password)-maxRepeated+1; i++ {
		if strings.Count(password[i:i+maxRepeated], string(password[i])) == maxRepeated {
			return true
		}
	}
	return false
}
