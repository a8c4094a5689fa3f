package api

import (
	"context"

	"github.com/Cossomoj/booksmood/internal/domain"
)

// AuthResult is the backend's answer to a successful authentication.
type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
}

// TelegramAuth exchanges the host-provided initData for a session.
func (c *Client) TelegramAuth(ctx context.Context, initData string) (*AuthResult, error) {
	body := map[string]string{"initData": initData}

	var result AuthResult
	if err := c.postJSON(ctx, "/api/auth/telegram", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TestAuth obtains an unverified development session.
// The backend only exposes this endpoint in development deployments.
func (c *Client) TestAuth(ctx context.Context) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, "/api/auth/test", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
