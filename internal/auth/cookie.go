package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// CookieOptions control the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
	Path   string
}

// NewSessionCookie builds the session cookie for a freshly issued token.
func NewSessionCookie(token string, ttl time.Duration, opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     cookiePath(opts),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns a cookie instructing the browser to drop the session.
func ClearSessionCookie(opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     cookiePath(opts),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookiePath(opts CookieOptions) string {
	if opts.Path == "" {
		return "/"
	}
	return opts.Path
}
