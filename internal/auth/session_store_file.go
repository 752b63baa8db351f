package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSessionStore keeps sessions in memory and rewrites a JSON file on
// every change so they survive a restart.
type FileSessionStore struct {
	path string

	mu       sync.Mutex
	sessions map[string]Session
}

func NewFileSessionStore(path string) (*FileSessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session state file path is required")
	}
	s := &FileSessionStore{
		path:     path,
		sessions: make(map[string]Session),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *FileSessionStore) Put(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.sessions[sess.ID]
	s.sessions[sess.ID] = cloneSession(sess)
	if err := s.persistLocked(); err != nil {
		if existed {
			s.sessions[sess.ID] = prev
		} else {
			delete(s.sessions, sess.ID)
		}
		return err
	}
	return nil
}

func (s *FileSessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	return s.persistLocked()
}

func (s *FileSessionStore) DeleteExpired(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := deleteExpiredLocked(s.sessions, before)
	if n == 0 {
		return 0, nil
	}
	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *FileSessionStore) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session state: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	state := make(map[string]Session)
	if err := json.Unmarshal(b, &state); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}
	s.sessions = state
	return nil
}

func (s *FileSessionStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir session state dir: %w", err)
	}
	b, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}
