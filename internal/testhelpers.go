package internal

// CreateTestSession builds a session with a small two-turn transcript, for
// use in tests across packages.
func CreateTestSession(id string) *Session {
	return &Session{
		ID:           id,
		Title:        "Test Session",
		CreatedAt:    "2024-01-01T00:00:00Z",
		UpdatedAt:    "2024-01-01T00:01:00Z",
		MessageCount: 2,
		Messages: []Message{
			{Role: RoleUser, Content: "What is 2+2?", Timestamp: "2024-01-01T00:00:30Z"},
			{Role: RoleAssistant, Content: "2+2 equals 4.", Timestamp: "2024-01-01T00:01:00Z"},
		},
	}
}

// CreateTestSessionWithMessages builds a session with the given transcript.
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:           id,
		Title:        "Test Session",
		MessageCount: len(messages),
		Messages:     messages,
	}
}
