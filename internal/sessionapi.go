package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultSessionLimit caps how many sessions a listing fetches.
const DefaultSessionLimit = 50

// ListSessions fetches up to limit sessions for the authenticated user,
// most recent first.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]Session, *Envelope) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	env := c.Request(ctx, http.MethodGet, fmt.Sprintf("/sessions?limit=%d", limit), nil)
	if !env.Success {
		return nil, env
	}

	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	if err := env.Decode(&resp); err != nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return resp.Sessions, env
}

// CreateSession creates a session server-side. The session id is
// server-assigned, so there is nothing to create locally beforehand.
func (c *Client) CreateSession(ctx context.Context, title string) (*Session, *Envelope) {
	if title == "" {
		title = DefaultSessionTitle
	}

	env := c.Request(ctx, http.MethodPost, "/sessions", map[string]string{"title": title})
	if !env.Success {
		return nil, env
	}

	var resp struct {
		Session *Session `json:"session"`
	}
	if err := env.Decode(&resp); err != nil || resp.Session == nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return resp.Session, env
}

// GetSession fetches one session in full, including its message sequence.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, *Envelope) {
	env := c.Request(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil)
	if !env.Success {
		return nil, env
	}

	var resp struct {
		Session *Session `json:"session"`
	}
	if err := env.Decode(&resp); err != nil || resp.Session == nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return resp.Session, env
}

// DeleteSession deletes one session server-side.
func (c *Client) DeleteSession(ctx context.Context, id string) *Envelope {
	return c.Request(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil)
}

// ClearSessions deletes every session for the authenticated user.
func (c *Client) ClearSessions(ctx context.Context) *Envelope {
	return c.Request(ctx, http.MethodPost, "/sessions/clear", nil)
}
