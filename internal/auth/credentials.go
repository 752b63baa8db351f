package auth

import (
	"errors"
	"sort"
)

var ErrUnknownIdentifier = errors.New("unknown identifier")

// CredentialLookup resolves an identifier to its secret. Implementations
// return ErrUnknownIdentifier when the identifier is not in the table.
type CredentialLookup interface {
	Lookup(userID string) (string, error)
}

type CredentialLister interface {
	List() ([]Credential, error)
}

// CredentialStore is a CredentialLookup that can also enumerate and seed
// its table.
type CredentialStore interface {
	CredentialLookup
	CredentialLister
	Put(c Credential) error
}

// DemoCredentials is the built-in demo table.
func DemoCredentials() []Credential {
	return []Credential{
		{UserID: "admin", AccessKey: "admin123"},
		{UserID: "auditor1", AccessKey: "audit2024"},
		{UserID: "user001", AccessKey: "access001"},
		{UserID: "demo", AccessKey: "demo123"},
	}
}

// StaticCredentials is an immutable in-memory credential table. It is safe
// for concurrent use because it is never written after construction.
type StaticCredentials struct {
	table map[string]string
	order []string
}

func NewStaticCredentials(creds []Credential) *StaticCredentials {
	s := &StaticCredentials{table: make(map[string]string, len(creds))}
	for _, c := range creds {
		if _, dup := s.table[c.UserID]; !dup {
			s.order = append(s.order, c.UserID)
		}
		s.table[c.UserID] = c.AccessKey
	}
	return s
}

func (s *StaticCredentials) Lookup(userID string) (string, error) {
	secret, ok := s.table[userID]
	if !ok {
		return "", ErrUnknownIdentifier
	}
	return secret, nil
}

// List returns the table in insertion order.
func (s *StaticCredentials) List() ([]Credential, error) {
	out := make([]Credential, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Credential{UserID: id, AccessKey: s.table[id]})
	}
	return out, nil
}

// SeedCredentials writes creds into store when the store is empty. It
// reports whether anything was written.
func SeedCredentials(store CredentialStore, creds []Credential) (bool, error) {
	existing, err := store.List()
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, c := range creds {
		if err := store.Put(c); err != nil {
			return false, err
		}
	}
	return true, nil
}

func sortCredentials(creds []Credential) {
	sort.Slice(creds, func(i, j int) bool { return creds[i].UserID < creds[j].UserID })
}
