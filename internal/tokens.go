package internal

import "sync"

// Keys under which credentials live in the scoped key-value store.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyClientID     = "client_id"
)

// TokenStore holds the credential pair for the authenticated client. It is
// injected into the client at construction so tests can run against an
// in-memory medium. Implementations must be safe for concurrent use.
type TokenStore interface {
	// Access returns the stored access token, or "" when absent.
	Access() string

	// Refresh returns the stored refresh token, or "" when absent.
	Refresh() string

	// SetAccess replaces the access token, keeping the refresh token.
	SetAccess(token string) error

	// SetPair replaces both credentials (login/register).
	SetPair(access, refresh string) error

	// Clear removes both credentials (logout or failed renewal).
	Clear() error
}

// MemoryTokenStore is an in-memory TokenStore for tests and ephemeral runs.
type MemoryTokenStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Access() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *MemoryTokenStore) Refresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetAccess(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	return nil
}

func (s *MemoryTokenStore) SetPair(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}
