package utils

import (
	"crypto/rand"
	"database/sql"
	"math/big"
	"strings"
)

const randomCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a cryptographically secure random string of
// the given length, suitable for tokens and codes.
func GenerateRandomString(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(randomCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is effectively unrecoverable; fall back
			// to a fixed character rather than panic in a token path.
			b[i] = randomCharset[0]
			continue
		}
		b[i] = randomCharset[n.Int64()]
	}
	return string(b)
}

// MaskEmail masks the local part of an email address for logs and display.
// "abc@example.com" becomes "a***c@example.com"; single-character local
// parts are returned unchanged.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 1 {
		return email
	}
	local := email[:at]
	domain := email[at:]
	if len(local) == 2 {
		return local[:1] + "*" + local[1:] + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

// ToNullString converts a string to sql.NullString, treating empty as NULL.
func ToNullString(str string) sql.NullString {
	if str == "" {
		return sql.NullString{String: str, Valid: false}
	}
	return sql.NullString{String: str, Valid: true}
}
