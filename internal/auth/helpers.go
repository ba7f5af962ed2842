package auth

import (
	"net/http"
	"strings"
)

// Session cookie names. The second is a legacy name still set by older
// frontend builds.
const (
	SessionCookie       = "sb-access-token"
	LegacySessionCookie = "supabase-auth-token"
)

// SessionToken extracts the session token from a request. Cookies are
// checked first (current then legacy name), then the Authorization header.
func SessionToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	if c, err := r.Cookie(LegacySessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoSession
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrNoSession
	}
	return parts[1], nil
}
