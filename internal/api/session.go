package api

import (
	"context"
	"errors"
	"net/http"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/auth"
)

type contextKey string

const userContextKey contextKey = "memory-friend-user"

// UserFrom returns the authenticated user stored by SessionMiddleware.
func UserFrom(ctx context.Context) (*auth.UserInfo, bool) {
	u, ok := ctx.Value(userContextKey).(*auth.UserInfo)
	return u, ok
}

// SessionMiddleware resolves the session token on every request and stores
// the resulting user in the request context. Requests without a valid
// session are rejected with 401 before any handler runs.
func SessionMiddleware(authorizer auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.SessionToken(r)
			if err != nil && !isDevAuthorizer(authorizer) {
				respond.WriteUnauthorized(w, "no session")
				return
			}

			user, err := authorizer.ResolveUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrNoSession) {
					respond.WriteUnauthorized(w, "invalid session")
					return
				}
				respond.WriteInternalError(w, "session check failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
		})
	}
}

func isDevAuthorizer(a auth.Authorizer) bool {
	_, ok := a.(*auth.DevAuthorizer)
	return ok
}
