package internal

import (
	"time"
)

// Message roles as used by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionTitle is the title the backend assigns to unnamed sessions.
const DefaultSessionTitle = "New Chat"

// Message represents a single conversation turn. Messages are immutable once
// appended; the sequence for a session is append-only except when the session
// is reloaded wholesale from the server.
type Message struct {
	Role      string `json:"message_type" yaml:"role"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"created_at,omitempty" yaml:"timestamp,omitempty"`
}

// Session represents a persisted chat session as reported by the backend.
// MessageCount is a display hint maintained by the server (and bumped
// optimistically on successful sends); it may lag len(Messages) and must not
// be treated as authoritative.
type Session struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	CreatedAt    string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	Messages     []Message `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// User represents the authenticated account returned by /auth/me.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// NewMessage builds a message stamped with the current UTC time.
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: Now(),
	}
}

// Now returns the current UTC time in the wire timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// GenerateTitle derives a display title from the first user message, matching
// the backend's convention: first 50 runes, ellipsized when truncated.
func GenerateTitle(messages []Message) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		runes := []rune(msg.Content)
		if len(runes) > 50 {
			return string(runes[:50]) + "..."
		}
		if msg.Content != "" {
			return msg.Content
		}
	}
	return DefaultSessionTitle
}
