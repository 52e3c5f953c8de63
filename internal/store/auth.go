package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoAuth is returned when no Strava authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// GetStravaAuth retrieves the stored Strava OAuth tokens
func (db *DB) GetStravaAuth() (*StravaAuth, error) {
	row := db.QueryRow(`
		SELECT athlete_id, access_token, refresh_token, expires_at
		FROM strava_auth
		WHERE id = 1
	`)

	var auth StravaAuth
	var expiresAt int64
	err := row.Scan(&auth.AthleteID, &auth.AccessToken, &auth.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}

	auth.ExpiresAt = time.Unix(expiresAt, 0)
	return &auth, nil
}

// SaveStravaAuth stores or updates the Strava OAuth tokens
func (db *DB) SaveStravaAuth(auth *StravaAuth) error {
	_, err := db.Exec(`
		INSERT INTO strava_auth (id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, auth.AthleteID, auth.AccessToken, auth.RefreshToken, auth.ExpiresAt.Unix())
	return err
}

// DeleteStravaAuth removes the stored Strava tokens
func (db *DB) DeleteStravaAuth() error {
	_, err := db.Exec(`DELETE FROM strava_auth WHERE id = 1`)
	return err
}
