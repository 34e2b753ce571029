package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest captures one request the fake backend received.
type RecordedRequest struct {
	Method string
	Path   string
	Bearer string
	Body   []byte
}

// Backend is a scriptable fake of the BitBraniac API for tests. Handlers are
// registered per "METHOD /path" route; unregistered routes fail the test.
// Every request is recorded so tests can assert on retry counts and attached
// credentials.
type Backend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is torn down with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		t:        t,
		handlers: make(map[string]http.HandlerFunc),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.dispatch))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) dispatch(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if bearer == r.Header.Get("Authorization") {
		bearer = ""
	}

	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Bearer: bearer,
		Body:   body,
	})
	handler, ok := b.handlers[key]
	b.mu.Unlock()

	if !ok {
		b.t.Errorf("unexpected request: %s", key)
		WriteJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "not found",
		})
		return
	}
	handler(w, r)
}

// Handle registers a handler for a route.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method+" "+path] = h
}

// Respond registers a canned JSON response for a route.
func (b *Backend) Respond(method, path string, status int, payload map[string]interface{}) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, payload)
	})
}

// RespondSequence registers a handler that serves one canned response per
// call, in order, repeating the last one once the sequence is exhausted.
func (b *Backend) RespondSequence(method, path string, responses ...CannedResponse) {
	var mu sync.Mutex
	calls := 0
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		idx := calls
		if idx >= len(responses) {
			idx = len(responses) - 1
		}
		calls++
		mu.Unlock()
		WriteJSON(w, responses[idx].Status, responses[idx].Payload)
	})
}

// CannedResponse is one scripted response for RespondSequence.
type CannedResponse struct {
	Status  int
	Payload map[string]interface{}
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// CountRequests returns how many requests hit a route.
func (b *Backend) CountRequests(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, req := range b.requests {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
