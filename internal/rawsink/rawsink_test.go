package rawsink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSink_WritesLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.jsonl")

	s := New(DefaultConfig(path))
	defer s.Close()

	if err := s.Write([]byte(`{"type":"trade"}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Write([]byte(`{"type":"orderbook_delta"}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), string(data))
	}
	if lines[0] != `{"type":"trade"}` || lines[1] != `{"type":"orderbook_delta"}` {
		t.Errorf("unexpected content: %q", string(data))
	}
}

func TestSink_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "raw.jsonl")

	s := New(DefaultConfig(path))
	defer s.Close()

	if err := s.Write([]byte(`{}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist at %s: %v", path, err)
	}
}
