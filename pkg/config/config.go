// Package config holds the configuration knobs for the authentication
// subsystem. Structs carry cleanenv tags; load with cleanenv.ReadEnv or
// populate manually in tests.
package config

import "time"

// AuthConfig contains login, lockout, and token behavior settings.
type AuthConfig struct {
	// MaxLoginFail is the number of failed logins inside FailureWindow
	// that locks the account.
	MaxLoginFail int `env:"AUTH_MAX_LOGIN_FAIL" env-default:"5"`

	// FailureWindowMinutes is the rolling lookback used for the lockout count.
	FailureWindowMinutes int `env:"AUTH_FAILURE_WINDOW_MINUTES" env-default:"60"`

	// TokenTTLSeconds is the validity period for verification tokens.
	TokenTTLSeconds int `env:"AUTH_TOKEN_TTL_SECONDS" env-default:"86400"`

	// MaxVerifyAttempts is the verify-attempt ceiling before a token
	// is deactivated.
	MaxVerifyAttempts int `env:"AUTH_MAX_VERIFY_ATTEMPTS" env-default:"5"`

	// SessionTimeoutMinutes is the inactivity timeout for device sessions.
	SessionTimeoutMinutes int `env:"AUTH_SESSION_TIMEOUT_MINUTES" env-default:"30"`

	// TicketTTLHours is the validity period for login handoff tickets.
	TicketTTLHours int `env:"AUTH_TICKET_TTL_HOURS" env-default:"2"`

	// PasswordReuseWindow is how many history entries the reuse check covers.
	PasswordReuseWindow int `env:"AUTH_PASSWORD_REUSE_WINDOW" env-default:"6"`

	// PasswordExpirationDays is the horizon stamped on each password change.
	PasswordExpirationDays int `env:"AUTH_PASSWORD_EXPIRATION_DAYS" env-default:"60"`

	// LastLoginInactiveDays: accounts dormant this long are inactivated by
	// the housekeeping sweep.
	LastLoginInactiveDays int `env:"AUTH_LAST_LOGIN_INACTIVE_DAYS" env-default:"90"`

	// LastLoginWarningDays: dormant accounts past this threshold get a
	// warning email from the sweep.
	LastLoginWarningDays int `env:"AUTH_LAST_LOGIN_WARNING_DAYS" env-default:"80"`

	// PasswordExpiredInactiveDays: accounts whose password is older than
	// this are inactivated by the sweep.
	PasswordExpiredInactiveDays int `env:"AUTH_PASSWORD_EXPIRED_INACTIVE_DAYS" env-default:"90"`

	// SetupPasswordURL and ForgotPasswordURL are the link bases embedded
	// in verification emails.
	SetupPasswordURL  string `env:"AUTH_SETUP_PASSWORD_URL" env-default:"http://localhost:3000/setup-password"`
	ForgotPasswordURL string `env:"AUTH_FORGOT_PASSWORD_URL" env-default:"http://localhost:3000/forgot-password"`
}

// DefaultAuthConfig returns an AuthConfig with the default knob values.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		MaxLoginFail:                5,
		FailureWindowMinutes:        60,
		TokenTTLSeconds:             86400,
		MaxVerifyAttempts:           5,
		SessionTimeoutMinutes:       30,
		TicketTTLHours:              2,
		PasswordReuseWindow:         6,
		PasswordExpirationDays:      60,
		LastLoginInactiveDays:       90,
		LastLoginWarningDays:        80,
		PasswordExpiredInactiveDays: 90,
		SetupPasswordURL:            "http://localhost:3000/setup-password",
		ForgotPasswordURL:           "http://localhost:3000/forgot-password",
	}
}

// FailureWindow returns the rolling lockout window as a duration.
func (c AuthConfig) FailureWindow() time.Duration {
	return time.Duration(c.FailureWindowMinutes) * time.Minute
}

// TokenTTL returns the verification token lifetime as a duration.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// SessionTimeout returns the device session inactivity timeout as a duration.
func (c AuthConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// TicketTTL returns the handoff ticket lifetime as a duration.
func (c AuthConfig) TicketTTL() time.Duration {
	return time.Duration(c.TicketTTLHours) * time.Hour
}

// SMTPConfig carries mail server settings for the email notifier.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
}

// DbConfig carries Postgres connection settings for the repositories.
type DbConfig struct {
	Host     string `env:"IDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"IDM_PG_PORT" env-default:"5432"`
	Database string `env:"IDM_PG_DATABASE" env-default:"idm_db"`
	User     string `env:"IDM_PG_USER" env-default:"idm"`
	Password string `env:"IDM_PG_PASSWORD" env-default:"pwd"`
}
