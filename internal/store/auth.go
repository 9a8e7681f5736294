package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoAuth is returned when no authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// GetAuth retrieves the stored authentication tokens
func (db *DB) GetAuth() (*Auth, error) {
	var auth Auth
	var expiresAt string
	err := db.QueryRow(`
		SELECT athlete_id, access_token, refresh_token, expires_at, scope
		FROM auth
		WHERE id = 1
	`).Scan(&auth.AthleteID, &auth.AccessToken, &auth.RefreshToken, &expiresAt, &auth.Scope)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, fmt.Errorf("loading auth: %w", err)
	}

	if auth.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	return &auth, nil
}

// SaveAuth stores or replaces the authentication tokens
func (db *DB) SaveAuth(auth *Auth) error {
	_, err := db.Exec(`
		INSERT INTO auth (id, athlete_id, access_token, refresh_token, expires_at, scope, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			updated_at = CURRENT_TIMESTAMP
	`, auth.AthleteID, auth.AccessToken, auth.RefreshToken, formatTime(auth.ExpiresAt), auth.Scope)
	return err
}

// UpdateTokens stores refreshed tokens, keeping athlete and scope
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := db.Exec(`
		UPDATE auth
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, accessToken, refreshToken, formatTime(expiresAt))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoAuth
	}
	return nil
}

// DeleteAuth removes stored tokens
func (db *DB) DeleteAuth() error {
	_, err := db.Exec(`DELETE FROM auth WHERE id = 1`)
	return err
}
