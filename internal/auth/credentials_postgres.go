package auth

import (
	"database/sql"
	"errors"
	"fmt"
)

type PostgresCredentialStore struct {
	db *sql.DB
}

func NewPostgresCredentialStore(db *sql.DB) (*PostgresCredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresCredentialStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresCredentialStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS auth_credentials (
	user_id TEXT PRIMARY KEY,
	access_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure auth_credentials schema: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) Lookup(userID string) (string, error) {
	if userID == "" {
		return "", ErrUnknownIdentifier
	}

	var secret string
	const q = `SELECT access_key FROM auth_credentials WHERE user_id = $1`
	if err := s.db.QueryRow(q, userID).Scan(&secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnknownIdentifier
		}
		return "", fmt.Errorf("query credential: %w", err)
	}
	return secret, nil
}

func (s *PostgresCredentialStore) List() ([]Credential, error) {
	const q = `SELECT user_id, access_key FROM auth_credentials ORDER BY user_id`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	out := make([]Credential, 0)
	for rows.Next() {
		var c Credential
		if err := rows.Scan(&c.UserID, &c.AccessKey); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func (s *PostgresCredentialStore) Put(c Credential) error {
	if c.UserID == "" || c.AccessKey == "" {
		return fmt.Errorf("user id and access key are required")
	}

	const q = `
INSERT INTO auth_credentials (user_id, access_key, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE
SET access_key = EXCLUDED.access_key,
	updated_at = NOW()`
	if _, err := s.db.Exec(q, c.UserID, c.AccessKey); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}
