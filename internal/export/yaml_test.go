package export

import (
	"bytes"
	"testing"

	"github.com/umarahad2005/bit-brainiac-web/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	session := internal.CreateTestSession("test1")

	var buf bytes.Buffer
	exporter := &YAMLExporter{}
	if err := exporter.Export(session, &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	var decoded internal.Session
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid YAML: %v\nOutput: %s", err, buf.String())
	}
	if decoded.ID != session.ID {
		t.Errorf("round-trip ID = %q, want %q", decoded.ID, session.ID)
	}
	if len(decoded.Messages) != len(session.Messages) {
		t.Errorf("round-trip len(Messages) = %d, want %d", len(decoded.Messages), len(session.Messages))
	}
	if decoded.Messages[0].Role != internal.RoleUser {
		t.Errorf("first message role = %q, want %q", decoded.Messages[0].Role, internal.RoleUser)
	}
}
