package auth

import (
	"context"
)

// UserInfo describes the authenticated user behind a session token.
type UserInfo struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Authorizer resolves a session token to the user it belongs to.
// Implementations: BackendAuthorizer (managed auth backend) and
// DevAuthorizer (local development bypass).
type Authorizer interface {
	ResolveUser(ctx context.Context, token string) (*UserInfo, error)
}
