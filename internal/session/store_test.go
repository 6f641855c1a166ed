package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))

	user := json.RawMessage(`{"id":1,"name":"A"}`)
	if err := store.Save("t1", user); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	token, raw, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "t1" {
		t.Fatalf("expected token t1, got %q", token)
	}
	if string(raw) != string(user) {
		t.Fatalf("expected user %s, got %s", user, raw)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))

	token, raw, err := store.Load()
	if err != nil {
		t.Fatalf("expected missing file to load cleanly, got %v", err)
	}
	if token != "" || raw != nil {
		t.Fatalf("expected empty session, got token=%q user=%s", token, raw)
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, _, err := NewStore(path).Load(); err == nil {
		t.Fatal("expected an error for a corrupt session file")
	}
}

func TestStoreSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := NewStore(path)

	if err := store.Save("t1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected session file to exist: %v", err)
	}
}

func TestStoreClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	if err := store.Save("t1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first Clear failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file to be gone, stat err: %v", err)
	}
}
