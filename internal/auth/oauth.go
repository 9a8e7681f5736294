package auth

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"readiness/internal/store"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"

	// ProfileScope grants access to the athlete's FTP
	ProfileScope = "profile:read_all"
)

// Scopes requested from Strava (comma-separated in a single value)
var Scopes = []string{
	"read,activity:read_all," + ProfileScope,
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
	Scope     string // scopes the athlete actually granted
}

// ExtractAthleteID extracts the athlete ID from the token extras
// Strava includes athlete info in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]any); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// TokenStore persists tokens between runs
type TokenStore interface {
	GetAuth() (*store.Auth, error)
	SaveAuth(auth *store.Auth) error
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
}

// Save stores the result of a completed authentication
func Save(ts TokenStore, result *AuthResult) error {
	return ts.SaveAuth(&store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
		Scope:        result.Scope,
	})
}

// StoredTokenSource loads the saved token and returns a source that
// refreshes it and writes refreshed tokens back to ts
func StoredTokenSource(cfg *oauth2.Config, ts TokenStore) (*TokenSource, *store.Auth, error) {
	saved, err := ts.GetAuth()
	if err != nil {
		return nil, nil, fmt.Errorf("loading stored token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		Expiry:       saved.ExpiresAt,
		TokenType:    "Bearer",
	}
	source := NewTokenSource(cfg, token, func(t *oauth2.Token) error {
		return ts.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	})
	return source, saved, nil
}
