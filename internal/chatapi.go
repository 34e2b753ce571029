package internal

import (
	"context"
	"net/http"
)

// ChatReply is the payload of a successful message exchange.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type chatMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// SendChatMessage delivers one user turn. Authenticated clients hit
// /chat/message and may associate the turn with a session; anonymous clients
// fall back to /chat/message/anonymous.
func (c *Client) SendChatMessage(ctx context.Context, message, sessionID string) (*ChatReply, *Envelope) {
	endpoint := "/chat/message/anonymous"
	if c.IsAuthenticated() {
		endpoint = "/chat/message"
	}

	env := c.Request(ctx, http.MethodPost, endpoint, chatMessageRequest{
		Message:   message,
		SessionID: sessionID,
	})
	if !env.Success {
		return nil, env
	}

	var reply ChatReply
	if err := env.Decode(&reply); err != nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return &reply, env
}

// WelcomeMessage fetches the assistant's initial greeting.
func (c *Client) WelcomeMessage(ctx context.Context) (string, *Envelope) {
	env := c.Request(ctx, http.MethodGet, "/chat/welcome", nil)
	if !env.Success {
		return "", env
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := env.Decode(&resp); err != nil {
		return "", Fail(MsgBadEnvelope)
	}
	return resp.Message, env
}

// CheckHealth probes the chat service liveness endpoint.
func (c *Client) CheckHealth(ctx context.Context) *Envelope {
	return c.Request(ctx, http.MethodGet, "/chat/health", nil)
}

// ChatHistory fetches the anonymous (sessionless) conversation history.
func (c *Client) ChatHistory(ctx context.Context) ([]Message, *Envelope) {
	env := c.Request(ctx, http.MethodGet, "/chat/history", nil)
	if !env.Success {
		return nil, env
	}

	var resp struct {
		Messages []Message `json:"messages"`
	}
	if err := env.Decode(&resp); err != nil {
		return nil, Fail(MsgBadEnvelope)
	}
	return resp.Messages, env
}

// ClearChat clears the anonymous conversation history server-side.
func (c *Client) ClearChat(ctx context.Context) *Envelope {
	return c.Request(ctx, http.MethodPost, "/chat/clear", nil)
}
