package app

import (
	"time"

	"github.com/charlesng35/otpdash/internal/auth"
)

const defaultOTPTTL = 10 * time.Minute

// TokenSignerConfig converts AuthConfig into the parameters expected by the token signer.
func (c AuthConfig) TokenSignerConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret: c.JWT.Secret,
		Issuer: c.JWT.Issuer,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return auth.SessionConfig{TTL: ttl}
}

// OTPTTL returns the configured code lifetime, defaulting to ten minutes.
func (c AuthConfig) OTPTTL() time.Duration {
	if c.OTP.TTL <= 0 {
		return defaultOTPTTL
	}
	return c.OTP.TTL
}

// CookieOptions derives session cookie attributes. Production always marks the cookie Secure.
func (c Config) CookieOptions() auth.CookieOptions {
	return auth.CookieOptions{
		Secure: c.Auth.Session.SecureCookie || c.Server.IsProduction(),
		Path:   "/",
	}
}
