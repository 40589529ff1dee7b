package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "nope", "session.yaml")}
	sess, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess != (Session{}) {
		t.Fatalf("expected zero session, got %+v", sess)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "cfg", "session.yaml")}
	want := Session{LastFile: "/tmp/book.pdf", LastPage: 41}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v, want %+v", got, want)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("::not yaml::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Store{Path: path}).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
