// Package store implements file-backed persistence for booth entities. One
// JSON snapshot per session under sessions/<id>/session.json with a legacy
// flat-file mirror, and a single bookings.json array for bookings. Snapshots
// are small, so every write is a whole-file overwrite.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/repository"
)

// SessionStore persists session snapshots under a data directory.
type SessionStore struct {
	dir string // <data>/sessions
	mu  sync.Mutex
}

// NewSessionStore creates the sessions directory and returns a store over it.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sessions directory: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) canonicalPath(id string) string {
	return filepath.Join(s.dir, id, "session.json")
}

// legacyPath is the flat-file layout older installs read. Both locations are
// written on every save; reads prefer the canonical nested layout.
func (s *SessionStore) legacyPath(id string) string {
	return filepath.Join(s.dir, "session-"+id+".json")
}

// Save writes the snapshot to both the canonical and legacy locations.
func (s *SessionStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(s.dir, sess.ID), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.canonicalPath(sess.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.WriteFile(s.legacyPath(sess.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing legacy session file: %w", err)
	}
	return nil
}

// Get loads a session by id, checking the canonical location first.
func (s *SessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.canonicalPath(id), s.legacyPath(id)} {
		sess, err := readSessionFile(path)
		if err == nil {
			return sess, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, repository.ErrNotFound
}

// List loads every persisted session from both layouts, preferring the
// canonical copy when a session exists in both.
func (s *SessionStore) List(_ context.Context) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	byID := make(map[string]*session.Session)
	for _, entry := range entries {
		if entry.IsDir() {
			sess, err := readSessionFile(filepath.Join(s.dir, entry.Name(), "session.json"))
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			byID[sess.ID] = sess
		}
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "session-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "session-"), ".json")
		if _, ok := byID[id]; ok {
			continue
		}
		sess, err := readSessionFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		byID[sess.ID] = sess
	}

	sessions := make([]session.Session, 0, len(byID))
	for _, sess := range byID {
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
	return sessions, nil
}

// Delete removes both copies of a session snapshot and its photo directory.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
		return fmt.Errorf("removing session directory: %w", err)
	}
	if err := os.Remove(s.legacyPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing legacy session file: %w", err)
	}
	return nil
}

// FindActive returns the most recent session still in active status, or nil.
func (s *SessionStore) FindActive(ctx context.Context) (*session.Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Status == session.StatusActive {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// EnsureSessionDir creates the photo directory for a session.
func (s *SessionStore) EnsureSessionDir(sessionID string) error {
	return os.MkdirAll(filepath.Join(s.dir, sessionID, "photos"), 0o755)
}

// CopyIntoSession copies a watched file into the session's photo directory
// and returns the destination path.
func (s *SessionStore) CopyIntoSession(sessionID, sourcePath, filename string) (string, error) {
	photosDir := filepath.Join(s.dir, sessionID, "photos")
	if err := os.MkdirAll(photosDir, 0o755); err != nil {
		return "", fmt.Errorf("creating photos directory: %w", err)
	}

	dest := filepath.Join(photosDir, filename)
	if err := copyFile(sourcePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func readSessionFile(path string) (*session.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrCorrupt, path, err)
	}
	return &sess, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}
	return out.Sync()
}
