package domain

import "time"

// Role names attached to users and embedded as token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string // argon2id, PHC encoded
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
