package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the backend API root used when no configuration is given.
const DefaultBaseURL = "http://localhost:5001/api"

const defaultRequestTimeout = 30 * time.Second

// Client performs logical requests against the BitBraniac backend. It
// attaches the stored access token as a bearer credential, renews it at most
// once per logical request when the backend answers 401, and normalizes every
// path to an Envelope: callers never see a raw transport error.
//
// Token renewal failure clears both credentials and fires the AuthExpired
// callback; presentation code decides what to do with that (the client never
// touches navigation).
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenStore
	clientID string

	// AuthExpired, if set, is called after a failed renewal has cleared the
	// stored credentials.
	AuthExpired func()
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithClientID attaches a stable client identifier to every request, so the
// backend can associate anonymous history across invocations.
func WithClientID(id string) ClientOption {
	return func(c *Client) {
		c.clientID = id
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a client for the API rooted at baseURL, holding
// credentials in tokens.
func NewClient(baseURL string, tokens TokenStore, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsAuthenticated reports whether an access credential is currently stored.
func (c *Client) IsAuthenticated() bool {
	return c.tokens.Access() != ""
}

// Tokens exposes the credential store, for callers that own auth state.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Request performs one logical request. endpoint is a path relative to the
// base URL; body, when non-nil, is JSON-serialized. The returned envelope is
// never nil.
//
// A 401 with a token attached triggers exactly one renewal and, on success,
// exactly one re-issued call whose result is final: a retried call that
// itself returns 401 is surfaced as-is, never renewed again.
func (c *Client) Request(ctx context.Context, method, endpoint string, body interface{}) *Envelope {
	reqID := uuid.NewString()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			LogError("[%s] failed to encode request body for %s: %v", reqID, endpoint, err)
			return Fail(MsgNetworkError)
		}
	}

	token := c.tokens.Access()
	status, respBody, err := c.do(ctx, method, endpoint, payload, token)
	if err != nil {
		LogWarn("[%s] %s %s: transport failure: %v", reqID, method, endpoint, err)
		return Fail(MsgNetworkError)
	}

	if status == http.StatusUnauthorized && token != "" {
		LogDebug("[%s] %s %s: unauthorized, attempting token renewal", reqID, method, endpoint)
		if !c.renewAccessToken(ctx) {
			if c.AuthExpired != nil {
				c.AuthExpired()
			}
			return Fail(MsgSessionExpired)
		}

		status, respBody, err = c.do(ctx, method, endpoint, payload, c.tokens.Access())
		if err != nil {
			LogWarn("[%s] %s %s: transport failure on retry: %v", reqID, method, endpoint, err)
			return Fail(MsgNetworkError)
		}
		// One renewal per logical request: whatever the retry yielded is
		// final, including another 401.
	}

	return ParseEnvelope(respBody)
}

// do issues a single HTTP call and returns the status and body. An error
// means no response was obtained.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, bearer string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	return resp.StatusCode, respBody, nil
}

// renewAccessToken exchanges the refresh token for a new access token.
// Returns false when no refresh token is stored, the backend rejects it, or
// the call fails at the transport level; in every failure case both stored
// credentials are cleared first.
func (c *Client) renewAccessToken(ctx context.Context) bool {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		c.clearTokens()
		return false
	}

	status, body, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, refresh)
	if err != nil {
		LogWarn("token renewal failed: %v", err)
		c.clearTokens()
		return false
	}

	// The envelope is authoritative here too: renewal succeeded only if the
	// body says so and carries a new access token.
	var result struct {
		Success     *bool  `json:"success"`
		AccessToken string `json:"access_token"`
	}
	if json.Unmarshal(body, &result) != nil ||
		result.Success == nil || !*result.Success || result.AccessToken == "" {
		LogDebug("token renewal rejected (status %d)", status)
		c.clearTokens()
		return false
	}

	if err := c.tokens.SetAccess(result.AccessToken); err != nil {
		LogError("failed to persist renewed access token: %v", err)
		c.clearTokens()
		return false
	}
	return true
}

func (c *Client) clearTokens() {
	if err := c.tokens.Clear(); err != nil {
		LogError("failed to clear credentials: %v", err)
	}
}
