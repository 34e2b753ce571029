package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/umarahad2005/bit-brainiac-web/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	session := internal.CreateTestSession("test1")

	var buf bytes.Buffer
	exporter := &MarkdownExporter{}
	if err := exporter.Export(session, &buf); err != nil {
		t.Fatalf("MarkdownExporter.Export() error = %v", err)
	}
	output := buf.String()

	if !strings.HasPrefix(output, "# Test Session") {
		t.Errorf("output should start with the session title header, got %q", output[:40])
	}
	if !strings.Contains(output, "**Session:** test1") {
		t.Error("output should contain the session id")
	}
	if !strings.Contains(output, "What is 2+2?") {
		t.Error("output should contain the user message")
	}
	if !strings.Contains(output, "**user:**") || !strings.Contains(output, "**assistant:**") {
		t.Error("output should label both roles")
	}
}

func TestMarkdownExporter_FallsBackToID(t *testing.T) {
	session := internal.CreateTestSessionWithMessages("fallback-id", nil)
	session.Title = ""

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# fallback-id") {
		t.Error("untitled session should use its id as header")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "hello world",
			want: "hello world",
		},
		{
			name: "bold markers escaped",
			in:   "this is **bold**",
			want: "this is \\*\\*bold\\*\\*",
		},
		{
			name: "code blocks preserved",
			in:   "```go\nx := **p\n```",
			want: "```go\nx := **p\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.in); got != tt.want {
				t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
