package internal

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umarahad2005/bit-brainiac-web/testutil"
)

func newTestClient(t *testing.T, backend *testutil.Backend) (*Client, *MemoryTokenStore) {
	t.Helper()
	tokens := NewMemoryTokenStore()
	return NewClient(backend.URL(), tokens), tokens
}

func TestClient_AttachesBearerToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/chat/welcome", http.StatusOK, map[string]interface{}{
		"success": true, "message": "hi",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetPair("access-1", "refresh-1")

	env := client.Request(context.Background(), http.MethodGet, "/chat/welcome", nil)
	require.True(t, env.Success)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "access-1", reqs[0].Bearer)
}

func TestClient_NoTokenNoBearer(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/chat/health", http.StatusOK, map[string]interface{}{
		"success": true,
	})

	client, _ := newTestClient(t, backend)
	env := client.Request(context.Background(), http.MethodGet, "/chat/health", nil)
	require.True(t, env.Success)
	assert.Equal(t, "", backend.Requests()[0].Bearer)
}

func TestClient_AttachesClientID(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/chat/history", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Client-ID"); got != "client-42" {
			t.Errorf("X-Client-ID = %q, want %q", got, "client-42")
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true, "messages": []interface{}{},
		})
	})

	client := NewClient(backend.URL(), NewMemoryTokenStore(), WithClientID("client-42"))
	env := client.Request(context.Background(), http.MethodGet, "/chat/history", nil)
	assert.True(t, env.Success)
}

func TestClient_TransportFailure(t *testing.T) {
	tokens := NewMemoryTokenStore()
	// Nothing listens here.
	client := NewClient("http://127.0.0.1:1", tokens)

	env := client.Request(context.Background(), http.MethodGet, "/chat/health", nil)
	require.False(t, env.Success)
	assert.Equal(t, MsgNetworkError, env.Message)
}

func TestClient_BackendFailurePassedVerbatim(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/sessions", http.StatusBadRequest, map[string]interface{}{
		"success": false, "message": "title too long",
	})

	client, _ := newTestClient(t, backend)
	env := client.Request(context.Background(), http.MethodPost, "/sessions", map[string]string{"title": "x"})
	require.False(t, env.Success)
	assert.Equal(t, "title too long", env.Message)
}

func TestClient_TrustsEnvelopeOverStatus(t *testing.T) {
	// A non-2xx status with a success:true body is still a success; the
	// envelope is authoritative for everything except the 401 renewal rule.
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/chat/welcome", http.StatusInternalServerError, map[string]interface{}{
		"success": true, "message": "hi",
	})

	client, _ := newTestClient(t, backend)
	env := client.Request(context.Background(), http.MethodGet, "/chat/welcome", nil)
	assert.True(t, env.Success)
}

func TestClient_RejectsBodyWithoutDiscriminator(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/chat/welcome", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"no discriminator"}`))
	})

	client, _ := newTestClient(t, backend)
	env := client.Request(context.Background(), http.MethodGet, "/chat/welcome", nil)
	require.False(t, env.Success)
	assert.Equal(t, MsgBadEnvelope, env.Message)
}

func TestClient_RenewalRetriesExactlyOnce(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.RespondSequence(http.MethodGet, "/sessions",
		testutil.CannedResponse{Status: http.StatusUnauthorized, Payload: map[string]interface{}{
			"success": false, "message": "token expired",
		}},
		testutil.CannedResponse{Status: http.StatusOK, Payload: map[string]interface{}{
			"success": true, "sessions": []interface{}{},
		}},
	)
	backend.Respond(http.MethodPost, "/auth/refresh", http.StatusOK, map[string]interface{}{
		"success": true, "access_token": "access-2",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetPair("access-1", "refresh-1")

	env := client.Request(context.Background(), http.MethodGet, "/sessions", nil)
	require.True(t, env.Success)

	assert.Equal(t, 2, backend.CountRequests(http.MethodGet, "/sessions"))
	assert.Equal(t, 1, backend.CountRequests(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, "access-2", tokens.Access())

	// The refresh call carries the refresh token; the retry carries the
	// renewed access token.
	for _, req := range backend.Requests() {
		if req.Path == "/auth/refresh" {
			assert.Equal(t, "refresh-1", req.Bearer)
		}
	}
	reqs := backend.Requests()
	assert.Equal(t, "access-2", reqs[len(reqs)-1].Bearer)
}

func TestClient_RetriedUnauthorizedIsSurfacedNotRenewed(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/sessions", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "still unauthorized",
	})
	backend.Respond(http.MethodPost, "/auth/refresh", http.StatusOK, map[string]interface{}{
		"success": true, "access_token": "access-2",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetPair("access-1", "refresh-1")

	env := client.Request(context.Background(), http.MethodGet, "/sessions", nil)
	require.False(t, env.Success)
	assert.Equal(t, "still unauthorized", env.Message)

	// One renewal, one retry, no cascade.
	assert.Equal(t, 1, backend.CountRequests(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 2, backend.CountRequests(http.MethodGet, "/sessions"))
}

func TestClient_RenewalRejectedClearsCredentials(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/sessions", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "token expired",
	})
	backend.Respond(http.MethodPost, "/auth/refresh", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "refresh token revoked",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetPair("access-1", "refresh-1")

	expired := false
	client.AuthExpired = func() { expired = true }

	env := client.Request(context.Background(), http.MethodGet, "/sessions", nil)
	require.False(t, env.Success)
	assert.Equal(t, MsgSessionExpired, env.Message)
	assert.True(t, env.IsAuthExpired())
	assert.True(t, expired)

	assert.Equal(t, "", tokens.Access())
	assert.Equal(t, "", tokens.Refresh())

	// The original call is not retried when renewal fails.
	assert.Equal(t, 1, backend.CountRequests(http.MethodGet, "/sessions"))
}

func TestClient_MissingRefreshTokenClearsCredentials(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/sessions", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "token expired",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetAccess("access-1")

	env := client.Request(context.Background(), http.MethodGet, "/sessions", nil)
	require.False(t, env.Success)
	assert.Equal(t, MsgSessionExpired, env.Message)
	assert.Equal(t, "", tokens.Access())
	assert.Equal(t, 0, backend.CountRequests(http.MethodPost, "/auth/refresh"))
}

func TestClient_AnonymousUnauthorizedNotRenewed(t *testing.T) {
	// A 401 with no token attached is not a renewal trigger; the body is
	// parsed like any other response.
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/sessions", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "User not authenticated",
	})

	client, _ := newTestClient(t, backend)
	env := client.Request(context.Background(), http.MethodGet, "/sessions", nil)
	require.False(t, env.Success)
	assert.Equal(t, "User not authenticated", env.Message)
	assert.Equal(t, 1, backend.CountRequests(http.MethodGet, "/sessions"))
}
