package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileCredentialStore keeps the credential table in a JSON file of
// {"user_id","access_key"} objects.
type FileCredentialStore struct {
	path string

	mu    sync.RWMutex
	table map[string]string
}

func NewFileCredentialStore(path string) (*FileCredentialStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credentials file path is required")
	}

	s := &FileCredentialStore{
		path:  path,
		table: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileCredentialStore) Lookup(userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.table[userID]
	if !ok {
		return "", ErrUnknownIdentifier
	}
	return secret, nil
}

func (s *FileCredentialStore) List() ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *FileCredentialStore) Put(c Credential) error {
	if c.UserID == "" || c.AccessKey == "" {
		return fmt.Errorf("user id and access key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[c.UserID] = c.AccessKey
	return s.persistLocked()
}

func (s *FileCredentialStore) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credentials file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	var decoded []Credential
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode credentials file: %w", err)
	}
	for _, c := range decoded {
		if c.UserID == "" {
			continue
		}
		s.table[c.UserID] = c.AccessKey
	}
	return nil
}

func (s *FileCredentialStore) snapshotLocked() []Credential {
	out := make([]Credential, 0, len(s.table))
	for id, secret := range s.table {
		out = append(out, Credential{UserID: id, AccessKey: secret})
	}
	sortCredentials(out)
	return out
}

func (s *FileCredentialStore) persistLocked() error {
	b, err := json.MarshalIndent(s.snapshotLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}
