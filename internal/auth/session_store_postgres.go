package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) (*PostgresSessionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresSessionStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSessionStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS web_sessions (
	id TEXT PRIMARY KEY,
	authenticated BOOLEAN NOT NULL DEFAULT FALSE,
	user_id TEXT NOT NULL DEFAULT '',
	login_error TEXT NOT NULL DEFAULT '',
	flashes JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure web_sessions schema: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) Get(id string) (Session, error) {
	const q = `
SELECT id, authenticated, user_id, login_error, flashes, created_at, updated_at
FROM web_sessions WHERE id = $1`

	var sess Session
	var flashesJSON []byte
	err := s.db.QueryRow(q, id).Scan(
		&sess.ID,
		&sess.State.Authenticated,
		&sess.State.UserID,
		&sess.State.LoginError,
		&flashesJSON,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	if len(flashesJSON) > 0 {
		if err := json.Unmarshal(flashesJSON, &sess.Flashes); err != nil {
			return Session{}, fmt.Errorf("decode session flashes: %w", err)
		}
	}
	return sess, nil
}

func (s *PostgresSessionStore) Put(sess Session) error {
	flashes := sess.Flashes
	if flashes == nil {
		flashes = []Flash{}
	}
	flashesJSON, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("encode session flashes: %w", err)
	}

	const q = `
INSERT INTO web_sessions (id, authenticated, user_id, login_error, flashes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET authenticated = EXCLUDED.authenticated,
	user_id = EXCLUDED.user_id,
	login_error = EXCLUDED.login_error,
	flashes = EXCLUDED.flashes,
	updated_at = EXCLUDED.updated_at`
	if _, err := s.db.Exec(q,
		sess.ID,
		sess.State.Authenticated,
		sess.State.UserID,
		sess.State.LoginError,
		string(flashesJSON),
		sess.CreatedAt,
		sess.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) DeleteExpired(before time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM web_sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired sessions: %w", err)
	}
	return int(n), nil
}
