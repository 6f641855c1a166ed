/**
 * @description
 * File-backed persistence for the authentication session. The store holds two
 * values, the opaque credential token and the serialized user record, in a
 * single JSON file. Writes are atomic: the file is written to a temporary
 * sibling and renamed into place, so a crash mid-write cannot corrupt an
 * existing session file.
 *
 * Only the session manager reads or writes this store: it is loaded once at
 * startup and mutated by login/logout alone.
 */

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// persistedSession is the on-disk layout. The user is kept as raw JSON so a
// corrupted user entry is surfaced to the manager at deserialization time
// rather than silently dropped here.
type persistedSession struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Store persists the session file at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted token and serialized user. A missing file is not an
// error: both values come back empty. An unreadable or syntactically invalid
// file is reported so the caller can self-heal.
func (s *Store) Load() (token string, user json.RawMessage, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var ps persistedSession
	if err := json.Unmarshal(data, &ps); err != nil {
		return "", nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	// An absent user entry round-trips as the JSON literal null.
	if string(ps.User) == "null" {
		ps.User = nil
	}
	return ps.Token, ps.User, nil
}

// Save writes the token and serialized user atomically.
func (s *Store) Save(token string, user json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(persistedSession{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an already-cleared store is a
// no-op, which keeps logout idempotent.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
