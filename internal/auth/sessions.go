package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionManager hands out per-client session records backed by a
// SessionStore. A session idle for longer than the TTL is discarded and
// replaced by a fresh anonymous one.
type SessionManager struct {
	store   SessionStore
	ttl     time.Duration
	nowFunc func() time.Time
	newID   func() string
}

func NewSessionManager(store SessionStore, ttl time.Duration) (*SessionManager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be > 0")
	}
	return &SessionManager{
		store:   store,
		ttl:     ttl,
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Load returns the session for id. Unknown, malformed or expired ids yield
// a new anonymous session that is not stored until Save is called.
func (m *SessionManager) Load(id string) (Session, error) {
	now := m.nowFunc()
	if _, err := uuid.Parse(id); err != nil {
		return m.fresh(now), nil
	}

	sess, err := m.store.Get(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return m.fresh(now), nil
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if now.Sub(sess.UpdatedAt) > m.ttl {
		if err := m.store.Delete(id); err != nil {
			return Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return m.fresh(now), nil
	}
	return sess, nil
}

// Save stores sess with a refreshed UpdatedAt and returns what was stored.
func (m *SessionManager) Save(sess Session) (Session, error) {
	if sess.ID == "" {
		return Session{}, fmt.Errorf("session id is required")
	}
	now := m.nowFunc()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	if err := m.store.Put(sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (m *SessionManager) Destroy(id string) error {
	if err := m.store.Delete(id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Rotate moves sess to a new id and removes the record stored under the old
// one. Call it whenever the session's privilege changes, such as on login,
// so an id handed out before authentication never becomes an authenticated
// session. The returned session is not stored until Save is called.
func (m *SessionManager) Rotate(sess Session) (Session, error) {
	if sess.ID != "" {
		if err := m.store.Delete(sess.ID); err != nil {
			return Session{}, fmt.Errorf("rotate session: %w", err)
		}
	}
	sess.ID = m.newID()
	sess.CreatedAt = m.nowFunc()
	return sess, nil
}

// PurgeExpired drops every session idle for longer than the TTL.
func (m *SessionManager) PurgeExpired() (int, error) {
	n, err := m.store.DeleteExpired(m.nowFunc().Add(-m.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}

func (m *SessionManager) fresh(now time.Time) Session {
	return Session{
		ID:        m.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
