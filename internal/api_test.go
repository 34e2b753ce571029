package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umarahad2005/bit-brainiac-web/testutil"
)

func TestClient_LoginPersistsCredentialPair(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/auth/login", http.StatusOK, map[string]interface{}{
		"success":       true,
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"user":          map[string]interface{}{"id": "u1", "email": "a@b.edu", "is_active": true},
	})

	client, tokens := newTestClient(t, backend)
	user, env := client.Login(context.Background(), "a@b.edu", "secret")
	require.True(t, env.Success)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.edu", user.Email)
	assert.Equal(t, "access-1", tokens.Access())
	assert.Equal(t, "refresh-1", tokens.Refresh())

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	require.NoError(t, json.Unmarshal(backend.Requests()[0].Body, &body))
	assert.Equal(t, "a@b.edu", body.Email)
	assert.Equal(t, "secret", body.Password)
}

func TestClient_LoginFailureStoresNothing(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]interface{}{
		"success": false, "message": "Invalid credentials",
	})

	client, tokens := newTestClient(t, backend)
	user, env := client.Login(context.Background(), "a@b.edu", "wrong")
	assert.Nil(t, user)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials", env.Message)
	assert.Equal(t, "", tokens.Access())
}

func TestClient_LogoutClearsCredentialsEvenOnFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/auth/logout", http.StatusInternalServerError, map[string]interface{}{
		"success": false, "message": "backend down",
	})

	client, tokens := newTestClient(t, backend)
	_ = tokens.SetPair("access-1", "refresh-1")

	_ = client.Logout(context.Background())
	assert.Equal(t, "", tokens.Access())
	assert.Equal(t, "", tokens.Refresh())
}

func TestClient_SendChatMessagePicksEndpointByAuth(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/chat/message/anonymous", http.StatusOK, map[string]interface{}{
		"success": true, "response": "anon reply", "session_id": "",
	})
	backend.Respond(http.MethodPost, "/chat/message", http.StatusOK, map[string]interface{}{
		"success": true, "response": "auth reply", "session_id": "s1",
	})

	client, tokens := newTestClient(t, backend)

	reply, env := client.SendChatMessage(context.Background(), "hi", "")
	require.True(t, env.Success)
	assert.Equal(t, "anon reply", reply.Response)

	_ = tokens.SetPair("access-1", "refresh-1")
	reply, env = client.SendChatMessage(context.Background(), "hi", "s1")
	require.True(t, env.Success)
	assert.Equal(t, "auth reply", reply.Response)
	assert.Equal(t, "s1", reply.SessionID)
}

func TestClient_SendChatMessageOmitsEmptySessionID(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodPost, "/chat/message/anonymous", http.StatusOK, map[string]interface{}{
		"success": true, "response": "ok", "session_id": "",
	})

	client, _ := newTestClient(t, backend)
	_, env := client.SendChatMessage(context.Background(), "hi", "")
	require.True(t, env.Success)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(backend.Requests()[0].Body, &body))
	_, present := body["session_id"]
	assert.False(t, present, "empty session_id must be omitted from the payload")
}

func TestClient_ListSessionsPassesLimit(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		testutil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true, "sessions": []interface{}{},
		})
	})

	client, _ := newTestClient(t, backend)
	sessions, env := client.ListSessions(context.Background(), 25)
	require.True(t, env.Success)
	assert.Empty(t, sessions)
}

func TestClient_GetSessionDecodesMessages(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/sessions/s1", http.StatusOK, map[string]interface{}{
		"success": true,
		"session": map[string]interface{}{
			"id": "s1", "title": "Algebra", "message_count": 2,
			"messages": []interface{}{
				map[string]interface{}{"message_type": "user", "content": "2+2?"},
				map[string]interface{}{"message_type": "assistant", "content": "4"},
			},
		},
	})

	client, _ := newTestClient(t, backend)
	session, env := client.GetSession(context.Background(), "s1")
	require.True(t, env.Success)
	require.NotNil(t, session)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, RoleUser, session.Messages[0].Role)
	assert.Equal(t, "4", session.Messages[1].Content)
}

func TestClient_CurrentUserMissingPayloadIsFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/auth/me", http.StatusOK, map[string]interface{}{
		"success": true,
	})

	client, _ := newTestClient(t, backend)
	user, env := client.CurrentUser(context.Background())
	assert.Nil(t, user)
	assert.False(t, env.Success)
}

func TestClient_WelcomeAndHealth(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Respond(http.MethodGet, "/chat/welcome", http.StatusOK, map[string]interface{}{
		"success": true, "message": "Welcome!",
	})
	backend.Respond(http.MethodGet, "/chat/health", http.StatusOK, map[string]interface{}{
		"success": true, "status": "healthy",
	})

	client, _ := newTestClient(t, backend)

	greeting, env := client.WelcomeMessage(context.Background())
	require.True(t, env.Success)
	assert.Equal(t, "Welcome!", greeting)

	assert.True(t, client.CheckHealth(context.Background()).Success)
}
