package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeLocal authenticates against the local credential store.
	AuthModeLocal AuthMode = "local"
	// AuthModeOIDC authenticates through an OpenID Connect provider.
	AuthModeOIDC AuthMode = "oidc"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "local", "oidc":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: local, oidc)", v)
	}
}

// OIDCConfig contains OpenID Connect configuration, used when
// AUTH_MODE=oidc. Local password login stays available alongside it.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"enerdesk"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/sso/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	IssuerURL    string `env:"ISSUER_URL"`
}

// GroupsConfig maps identity-provider groups onto application roles. Unset
// groups never match; SSO users outside every configured group become
// viewers.
type GroupsConfig struct {
	Admin   string `env:"ADMIN_GROUP"`
	Manager string `env:"MANAGER_GROUP"`
	Trader  string `env:"TRADER_GROUP"`
	Analyst string `env:"ANALYST_GROUP"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines whether SSO is offered in addition to local login.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"local"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Groups configuration for SSO role mapping.
	Groups GroupsConfig `envPrefix:"AUTH_"`

	// MaxLoginAttempts is the failure count that locks an account.
	MaxLoginAttempts int `env:"AUTH_MAX_LOGIN_ATTEMPTS" envDefault:"5"`

	// LockoutWindow is how long failures count toward the lockout, measured
	// from the first failure.
	LockoutWindow time.Duration `env:"AUTH_LOCKOUT_WINDOW" envDefault:"15m"`

	// IdleTimeout is the sliding session expiry.
	IdleTimeout time.Duration `env:"AUTH_IDLE_TIMEOUT" envDefault:"1h"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.MaxLoginAttempts < 1 {
		a.MaxLoginAttempts = 5
	}
	if a.LockoutWindow <= 0 {
		a.LockoutWindow = 15 * time.Minute
	}
	if a.IdleTimeout <= 0 {
		a.IdleTimeout = time.Hour
	}
}
