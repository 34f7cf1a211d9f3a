package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// KiteSessionRepository stores the single broker session row.
// The access token is stored encrypted; encryption happens in the service
// layer so the repository only ever sees ciphertext.
type KiteSessionRepository struct {
	db *sql.DB
}

// NewKiteSessionRepository creates a new KiteSessionRepository with the provided database connection.
func NewKiteSessionRepository(db *sql.DB) *KiteSessionRepository {
	return &KiteSessionRepository{db: db}
}

// UpsertSession replaces the stored session with a new encrypted token.
func (s *KiteSessionRepository) UpsertSession(ctx context.Context, encryptedToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kite_session (id, access_token_enc, created_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET access_token_enc = excluded.access_token_enc, created_at = excluded.created_at
	`, encryptedToken, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert kite session: %w", err)
	}
	return nil
}

// GetSession retrieves the stored encrypted token and its creation time.
// Returns ("", zero, nil) when no session has been stored.
func (s *KiteSessionRepository) GetSession() (string, time.Time, error) {
	var encryptedToken, createdAtStr string

	err := s.db.QueryRow(`SELECT access_token_enc, created_at FROM kite_session WHERE id = 1`).
		Scan(&encryptedToken, &createdAtStr)
	if err == sql.ErrNoRows {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to query kite_session table: %w", err)
	}

	createdAt, err := ParseTime(createdAtStr)
	if err != nil {
		return "", time.Time{}, err
	}
	return encryptedToken, createdAt, nil
}
