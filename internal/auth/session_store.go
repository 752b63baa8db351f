package auth

import (
	"errors"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Get(id string) (Session, error)
	Put(sess Session) error
	Delete(id string) error
	// DeleteExpired removes sessions last updated before the cutoff.
	DeleteExpired(before time.Time) (int, error)
}

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

func (s *InMemorySessionStore) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *InMemorySessionStore) Put(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *InMemorySessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *InMemorySessionStore) DeleteExpired(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteExpiredLocked(s.sessions, before), nil
}

func deleteExpiredLocked(sessions map[string]Session, before time.Time) int {
	n := 0
	for id, sess := range sessions {
		if sess.UpdatedAt.Before(before) {
			delete(sessions, id)
			n++
		}
	}
	return n
}

func cloneSession(sess Session) Session {
	sess.Flashes = append([]Flash(nil), sess.Flashes...)
	return sess
}
