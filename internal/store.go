package internal

import (
	"context"
	"strings"
	"sync"
)

// transcriptKey versions the sessionless (anonymous or unsaved) transcript.
const transcriptKey = ""

// ChatStore owns the session list and the active session's message sequence,
// applying optimistic-then-confirm/rollback semantics around every client
// call. The rendered transcript is exactly Messages(); there is no hidden
// buffering.
//
// Every mutating operation resolves to either an applied state change or a
// surfaced error string (Err()); local state is guaranteed consistent in the
// failure case. The store never returns a raw transport error — the client
// has already normalized those.
//
// Each session (and the sessionless transcript) carries a monotonic version
// counter. A mutation captures the version of its target when it starts and
// its result is discarded if the version has advanced by the time the network
// outcome lands, so a stale in-flight result cannot overwrite newer state.
type ChatStore struct {
	mu       sync.Mutex
	client   *Client
	sessions []Session
	current  *Session
	messages []Message
	lastErr  string
	versions map[string]uint64
	limit    int
}

// NewChatStore creates a store backed by client.
func NewChatStore(client *Client) *ChatStore {
	return &ChatStore{
		client:   client,
		versions: make(map[string]uint64),
	}
}

// SetSessionLimit caps how many sessions LoadUserSessions requests. Zero or
// negative means the default limit.
func (s *ChatStore) SetSessionLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = n
}

// Sessions returns a copy of the session list, most recent first.
func (s *ChatStore) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Current returns the active session, or nil. The active session may be
// "detached" (absent from the list) until the next list refresh reconciles
// it; it is still rendered.
func (s *ChatStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	session := *s.current
	return &session
}

// Messages returns a copy of the active message sequence.
func (s *ChatStore) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Err returns the most recently surfaced error message, or "".
func (s *ChatStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearErr resets the surfaced error.
func (s *ChatStore) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// activeKey returns the version key for the current mutation target.
// Callers must hold s.mu.
func (s *ChatStore) activeKey() string {
	if s.current != nil {
		return s.current.ID
	}
	return transcriptKey
}

// bump invalidates in-flight mutations against key. Callers must hold s.mu.
func (s *ChatStore) bump(key string) {
	s.versions[key]++
}

// SendMessage delivers one user turn. The user message is appended
// optimistically and removed again, exactly, if the network call fails;
// on success the assistant reply is appended and the active session's list
// entry gets its UpdatedAt refreshed and MessageCount bumped by two.
//
// Empty (after trimming) input is a no-op that never reaches the network.
func (s *ChatStore) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	key := s.activeKey()
	ver := s.versions[key]
	sessionID := ""
	if s.current != nil {
		sessionID = s.current.ID
	}
	mark := len(s.messages)
	s.messages = append(s.messages, NewMessage(RoleUser, text))
	s.lastErr = ""
	s.mu.Unlock()

	reply, env := s.client.SendChatMessage(ctx, text, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[key] != ver || s.activeKey() != key {
		// The target was reloaded or replaced while the call was in flight;
		// its transcript no longer contains our optimistic append.
		LogDebug("discarding stale send result for %q", key)
		return
	}

	if !env.Success {
		// Exact rollback: restore the pre-mutation sequence.
		s.messages = s.messages[:mark]
		s.lastErr = env.ErrorMessage("Failed to send message")
		return
	}

	s.messages = append(s.messages, NewMessage(RoleAssistant, reply.Response))

	if s.current != nil && reply.SessionID != "" {
		if s.current.Title == "" || s.current.Title == DefaultSessionTitle {
			// The backend derives the title from the first user turn; mirror
			// it locally so the list is right before the next refresh.
			s.current.Title = GenerateTitle(s.messages)
		}
		s.current.UpdatedAt = Now()
		s.current.MessageCount += 2
		s.syncSessionEntry(*s.current)
	}
}

// syncSessionEntry mirrors the active session's metadata into its list entry.
// Callers must hold s.mu.
func (s *ChatStore) syncSessionEntry(session Session) {
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			s.sessions[i].Title = session.Title
			s.sessions[i].UpdatedAt = session.UpdatedAt
			s.sessions[i].MessageCount = session.MessageCount
			return
		}
	}
	// Detached active session: tolerated until the next list refresh.
}

// CreateNewSession creates a session server-side and, on success, prepends it
// to the list and makes it active. No optimistic entry exists beforehand: the
// id is server-assigned and cannot be guessed, so correctness wins over
// perceived latency here.
func (s *ChatStore) CreateNewSession(ctx context.Context, title string) *Session {
	session, env := s.client.CreateSession(ctx, title)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to create new chat session")
		return nil
	}

	s.sessions = append([]Session{*session}, s.sessions...)
	s.setActive(session)
	s.lastErr = ""
	out := *session
	return &out
}

// LoadSession fetches a session in full and replaces the active session and
// transcript wholesale on success. On failure the prior active session is
// untouched.
func (s *ChatStore) LoadSession(ctx context.Context, id string) *Session {
	session, env := s.client.GetSession(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to load chat session")
		return nil
	}

	s.setActive(session)
	s.lastErr = ""
	out := *session
	return &out
}

// setActive replaces the active session and transcript, invalidating
// in-flight mutations against both the old and new targets. Callers must
// hold s.mu.
func (s *ChatStore) setActive(session *Session) {
	s.bump(s.activeKey())
	s.current = session
	if session == nil {
		s.messages = nil
		s.bump(transcriptKey)
		return
	}
	s.messages = make([]Message, len(session.Messages))
	copy(s.messages, session.Messages)
	s.bump(session.ID)
}

// SelectSession makes an already-listed session active without a server
// round-trip. Returns false if id is not in the list.
func (s *ChatStore) SelectSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			session := s.sessions[i]
			s.setActive(&session)
			return true
		}
	}
	return false
}

// DeleteSession deletes a session server-side first, then removes it from the
// local list. If the deleted session was active, active state is cleared. On
// failure the list is untouched and false is returned.
func (s *ChatStore) DeleteSession(ctx context.Context, id string) bool {
	env := s.client.DeleteSession(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to delete chat session")
		return false
	}

	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.sessions = kept
	s.bump(id)

	if s.current != nil && s.current.ID == id {
		s.setActive(nil)
	}

	s.lastErr = ""
	return true
}

// ClearAllSessions deletes every session server-side, then resets the local
// list and active session. Clearing an already-empty list succeeds.
func (s *ChatStore) ClearAllSessions(ctx context.Context) bool {
	env := s.client.ClearSessions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to clear chat sessions")
		return false
	}

	for _, session := range s.sessions {
		s.bump(session.ID)
	}
	s.sessions = nil
	s.setActive(nil)
	s.lastErr = ""
	return true
}

// LoadUserSessions unconditionally replaces the session list with the
// server's current listing. Used for explicit refresh and as the initial
// hydration once the user is authenticated.
func (s *ChatStore) LoadUserSessions(ctx context.Context) {
	s.mu.Lock()
	limit := s.limit
	s.mu.Unlock()
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	sessions, env := s.client.ListSessions(ctx, limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to load chat sessions")
		return
	}

	s.sessions = sessions
	s.lastErr = ""
}

// LoadWelcome seeds an empty transcript with the assistant's greeting. A
// non-empty transcript is left alone; a failed fetch is logged, not surfaced.
func (s *ChatStore) LoadWelcome(ctx context.Context) {
	s.mu.Lock()
	if len(s.messages) > 0 {
		s.mu.Unlock()
		return
	}
	key := s.activeKey()
	ver := s.versions[key]
	s.mu.Unlock()

	greeting, env := s.client.WelcomeMessage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		LogWarn("failed to load welcome message: %s", env.Message)
		return
	}
	if s.versions[key] != ver || s.activeKey() != key || len(s.messages) > 0 {
		return
	}
	s.messages = append(s.messages, NewMessage(RoleAssistant, greeting))
}

// LoadAnonymousHistory replaces the sessionless transcript with the server's
// stored anonymous history. A no-op when a session is active.
func (s *ChatStore) LoadAnonymousHistory(ctx context.Context) {
	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return
	}
	ver := s.versions[transcriptKey]
	s.mu.Unlock()

	messages, env := s.client.ChatHistory(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to load chat history")
		return
	}
	if s.versions[transcriptKey] != ver || s.current != nil {
		return
	}
	s.messages = messages
	s.lastErr = ""
}

// ClearAnonymousChat clears the anonymous history server-side, then resets
// the sessionless transcript. A no-op when a session is active.
func (s *ChatStore) ClearAnonymousChat(ctx context.Context) bool {
	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	env := s.client.ClearChat(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !env.Success {
		s.lastErr = env.ErrorMessage("Failed to clear chat history")
		return false
	}
	if s.current == nil {
		s.messages = nil
		s.bump(transcriptKey)
	}
	s.lastErr = ""
	return true
}

// Reset clears all local state (logout). No server call is made.
func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		s.bump(session.ID)
	}
	s.sessions = nil
	s.setActive(nil)
	s.lastErr = ""
}
