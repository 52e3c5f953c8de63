package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"cycleiq/internal/store"
)

// refreshBuffer refreshes tokens slightly before they actually expire
const refreshBuffer = 60 * time.Second

// TokenSource wraps oauth2.TokenSource with persistence: every refreshed
// token is written back to the store before use, so a crash mid-session
// never loses a rotated refresh token.
type TokenSource struct {
	config *oauth2.Config
	db     *store.DB

	mu        sync.Mutex
	token     *oauth2.Token
	athleteID int64
}

// NewTokenSource creates a token source from the stored Strava credentials.
// Returns store.ErrNoAuth when no account is connected.
func NewTokenSource(cfg *oauth2.Config, db *store.DB) (*TokenSource, error) {
	saved, err := db.GetStravaAuth()
	if err != nil {
		return nil, err
	}
	return &TokenSource{
		config:    cfg,
		db:        db,
		token:     tokenFromAuth(saved),
		athleteID: saved.AthleteID,
	}, nil
}

// Token returns a valid token, refreshing and persisting if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	fresh, err := src.Token()
	if err != nil {
		return nil, err
	}

	if err := ts.db.SaveStravaAuth(&store.StravaAuth{
		AthleteID:    ts.athleteID,
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		ExpiresAt:    fresh.Expiry,
	}); err != nil {
		return nil, err
	}

	ts.token = fresh
	return fresh, nil
}
