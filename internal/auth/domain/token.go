package domain

import "time"

// TokenPair is what a successful refresh returns: a fresh access token and
// the rotated refresh token that replaces the one just spent.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult carries everything the login endpoint surfaces on success.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Username     string
	DisplayName  string
}
