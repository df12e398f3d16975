// package repositories provides the persistence layer for credentials.
//
// The token store is a small key-value table in SQLite, the CLI analogue of
// the browser's durable key-value storage. Both credential fields are written
// in a single transaction so the pair is never half-written.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Fixed storage keys for the persisted credential pair.
const (
	KeyAccessToken  = "spotify_access_token"
	KeyRefreshToken = "spotify_refresh_token"
)

const tokenSchema = `
CREATE TABLE IF NOT EXISTS tokens (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// TokenRepository stores the credential pair in SQLite.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates the repository and ensures the schema exists.
func NewTokenRepository(db *sql.DB) (*TokenRepository, error) {
	if _, err := db.Exec(tokenSchema); err != nil {
		return nil, fmt.Errorf("failed to create tokens table: %w", err)
	}
	return &TokenRepository{db: db}, nil
}

// SavePair stores both tokens atomically. An empty refresh token keeps the
// previously stored one (providers do not always rotate it on refresh).
func (r *TokenRepository) SavePair(accessToken, refreshToken string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(tx, KeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := upsert(tx, KeyRefreshToken, refreshToken); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token pair: %w", err)
	}
	return nil
}

// Pair returns the stored access and refresh tokens. Missing keys yield
// empty strings, not errors.
func (r *TokenRepository) Pair() (accessToken, refreshToken string, err error) {
	if accessToken, err = r.get(KeyAccessToken); err != nil {
		return "", "", err
	}
	if refreshToken, err = r.get(KeyRefreshToken); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Clear removes both tokens in a single transaction.
func (r *TokenRepository) Clear() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tokens WHERE key IN (?, ?)", KeyAccessToken, KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token clear: %w", err)
	}
	return nil
}

func (r *TokenRepository) get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM tokens WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token %s: %w", key, err)
	}
	return value, nil
}

func upsert(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(
		`INSERT INTO tokens (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to store token %s: %w", key, err)
	}
	return nil
}
