package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// BackendAuthorizer validates session tokens against the managed auth
// backend's user endpoint.
type BackendAuthorizer struct {
	client *resty.Client
	apiKey string
}

// NewBackendAuthorizer creates an authorizer for the given backend base URL
// and deployment API key.
func NewBackendAuthorizer(baseURL, apiKey string) (*BackendAuthorizer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("backend key is required")
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey).
		SetTimeout(10 * time.Second)

	return &BackendAuthorizer{client: c, apiKey: apiKey}, nil
}

type backendUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ResolveUser asks the backend who the token belongs to.
func (a *BackendAuthorizer) ResolveUser(ctx context.Context, token string) (*UserInfo, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("auth backend request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("auth backend status %d: %s", resp.StatusCode(), resp.String())
	}

	var u backendUser
	if err := json.Unmarshal(resp.Body(), &u); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &UserInfo{UserID: u.ID, Email: u.Email}, nil
}

// HealthPing implements health.HealthPinger against the backend health endpoint.
func (a *BackendAuthorizer) HealthPing(ctx context.Context) error {
	resp, err := a.client.R().SetContext(ctx).Get("/auth/v1/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("auth backend health status %d", resp.StatusCode())
	}
	return nil
}
