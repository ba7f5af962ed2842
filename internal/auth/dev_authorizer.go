package auth

import (
	"context"
)

const (
	// DevUserID is the identity every request resolves to when auth is bypassed.
	DevUserID = "memory-friend-dev"
)

// DevAuthorizer accepts any request without validating tokens.
// Local development only; enabled by the DEV_BYPASS_AUTH config flag.
type DevAuthorizer struct{}

func NewDevAuthorizer() *DevAuthorizer { return &DevAuthorizer{} }

// ResolveUser returns the fixed local development identity regardless of token.
func (d *DevAuthorizer) ResolveUser(ctx context.Context, token string) (*UserInfo, error) {
	return &UserInfo{UserID: DevUserID, Email: "dev@memoryfriend.local"}, nil
}
