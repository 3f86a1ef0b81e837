package draft

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write draft file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `description: greeting
content: |
  <h2>Hello</h2>
  <p>Hi [[customer_id]]</p>
`)

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if d.Description != "greeting" {
		t.Errorf("expected description 'greeting', got %q", d.Description)
	}
	if !strings.Contains(d.Content, "[[customer_id]]") {
		t.Errorf("content not loaded: %q", d.Content)
	}
}

func TestLoadFile_empty(t *testing.T) {
	d, err := LoadFile(writeFile(t, ""))
	if err != nil {
		t.Fatalf("LoadFile on empty file: %v", err)
	}
	if d != (Draft{}) {
		t.Fatalf("expected empty draft, got %+v", d)
	}
}

func TestLoadFile_unknownField(t *testing.T) {
	_, err := LoadFile(writeFile(t, "templateContent: x\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadFile_missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
