package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshBuffer is how long before expiry a token is replaced
const refreshBuffer = 60 * time.Second

// TokenSource hands out the current Strava token and exchanges the refresh
// token once the access token is within refreshBuffer of expiring. Every
// new token is passed to persist before it is used.
type TokenSource struct {
	mu      sync.Mutex
	cfg     *oauth2.Config
	current *oauth2.Token
	persist func(*oauth2.Token) error
	now     func() time.Time
}

// NewTokenSource creates a source starting from token. persist may be nil.
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, persist func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{cfg: cfg, current: token, persist: persist, now: time.Now}
}

// Token implements oauth2.TokenSource
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.usable() {
		return ts.current, nil
	}
	return ts.refresh()
}

// refresh exchanges the refresh token. A token holding only a refresh
// token is never valid to oauth2, so the exchange always happens.
func (ts *TokenSource) refresh() (*oauth2.Token, error) {
	seed := &oauth2.Token{RefreshToken: ts.current.RefreshToken}
	next, err := ts.cfg.TokenSource(context.Background(), seed).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	if ts.persist != nil {
		if err := ts.persist(next); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}
	ts.current = next
	return next, nil
}

// IsExpired reports whether the next Token call will refresh
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return !ts.usable()
}

func (ts *TokenSource) usable() bool {
	return ts.current.AccessToken != "" && ts.current.Expiry.Sub(ts.now()) > refreshBuffer
}
