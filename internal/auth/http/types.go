package http

import "time"

// Login status codes carried on the wire. Clients branch on statusCode
// rather than the HTTP status.
const (
	loginFailed  = 0
	loginSucceed = 1
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned for both outcomes; on failure the token fields
// are empty and the message is deliberately generic.
type LoginResponse struct {
	StatusCode   int        `json:"statusCode"`
	Message      string     `json:"message"`
	Token        string     `json:"token,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	Expiration   *time.Time `json:"expiration,omitempty"`
	Name         string     `json:"name,omitempty"`
	Username     string     `json:"username,omitempty"`
}

type RefreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// StatusResponse is the generic envelope for register and change-password.
type StatusResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
