package internal

import (
	"context"
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Login authenticates with the backend and persists the returned credential
// pair on success. The returned user may be nil if the backend omitted it.
func (c *Client) Login(ctx context.Context, email, password string) (*User, *Envelope) {
	return c.obtainCredentials(ctx, "/auth/login", email, password)
}

// Register creates an account and persists the returned credential pair on
// success.
func (c *Client) Register(ctx context.Context, email, password string) (*User, *Envelope) {
	return c.obtainCredentials(ctx, "/auth/register", email, password)
}

func (c *Client) obtainCredentials(ctx context.Context, endpoint, email, password string) (*User, *Envelope) {
	env := c.Request(ctx, http.MethodPost, endpoint, credentialsRequest{Email: email, Password: password})
	if !env.Success {
		return nil, env
	}

	var resp authResponse
	if err := env.Decode(&resp); err != nil || resp.AccessToken == "" {
		LogWarn("%s succeeded but no credentials in response", endpoint)
		return nil, Fail(MsgBadEnvelope)
	}
	if err := c.tokens.SetPair(resp.AccessToken, resp.RefreshToken); err != nil {
		LogError("failed to persist credentials: %v", err)
	}
	return resp.User, env
}

// Logout invalidates the server-side session and clears local credentials
// regardless of the call's outcome.
func (c *Client) Logout(ctx context.Context) *Envelope {
	env := c.Request(ctx, http.MethodPost, "/auth/logout", nil)
	c.clearTokens()
	return env
}

// CurrentUser fetches the authenticated account from /auth/me.
func (c *Client) CurrentUser(ctx context.Context) (*User, *Envelope) {
	env := c.Request(ctx, http.MethodGet, "/auth/me", nil)
	if !env.Success {
		return nil, env
	}

	var resp struct {
		User *User `json:"user"`
	}
	if err := env.Decode(&resp); err != nil || resp.User == nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return resp.User, env
}
