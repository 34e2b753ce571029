package internal

import (
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "success envelope",
			body:        `{"success":true,"message":"ok"}`,
			wantSuccess: true,
			wantMessage: "ok",
		},
		{
			name:        "failure envelope with message",
			body:        `{"success":false,"message":"Invalid credentials"}`,
			wantSuccess: false,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "success with extra payload",
			body:        `{"success":true,"sessions":[{"id":"s1"}]}`,
			wantSuccess: true,
			wantMessage: "",
		},
		{
			name:        "missing discriminator",
			body:        `{"message":"ok"}`,
			wantSuccess: false,
			wantMessage: MsgBadEnvelope,
		},
		{
			name:        "not json",
			body:        `<html>502 Bad Gateway</html>`,
			wantSuccess: false,
			wantMessage: MsgBadEnvelope,
		},
		{
			name:        "empty body",
			body:        ``,
			wantSuccess: false,
			wantMessage: MsgBadEnvelope,
		},
		{
			name:        "null success",
			body:        `{"success":null}`,
			wantSuccess: false,
			wantMessage: MsgBadEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ParseEnvelope([]byte(tt.body))
			if env.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", env.Success, tt.wantSuccess)
			}
			if env.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", env.Message, tt.wantMessage)
			}
		})
	}
}

func TestEnvelope_Decode(t *testing.T) {
	env := ParseEnvelope([]byte(`{"success":true,"response":"4","session_id":"s1"}`))

	var reply ChatReply
	if err := env.Decode(&reply); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if reply.Response != "4" {
		t.Errorf("Response = %q, want %q", reply.Response, "4")
	}
	if reply.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", reply.SessionID, "s1")
	}
}

func TestEnvelope_DecodeWithoutPayload(t *testing.T) {
	env := Fail("nope")

	var reply ChatReply
	if err := env.Decode(&reply); err == nil {
		t.Error("Decode() on a synthetic failure should return an error")
	}
}

func TestEnvelope_ErrorMessage(t *testing.T) {
	if got := Fail("specific").ErrorMessage("fallback"); got != "specific" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "specific")
	}
	if got := Fail("").ErrorMessage("fallback"); got != "fallback" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "fallback")
	}
}

func TestEnvelope_IsAuthExpired(t *testing.T) {
	if !Fail(MsgSessionExpired).IsAuthExpired() {
		t.Error("session-expired failure should report IsAuthExpired")
	}
	if Fail(MsgNetworkError).IsAuthExpired() {
		t.Error("network failure should not report IsAuthExpired")
	}
}
