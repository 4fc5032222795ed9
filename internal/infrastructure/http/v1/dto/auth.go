package dto

import (
	"time"

	"stocktake/internal/domain/auth"
)

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request to domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// LoginResponse for successful authentication.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
	Username    string    `json:"username"`
	IsAdmin     bool      `json:"isAdmin"`
}

// FromTokenPair converts the domain token pair.
func FromTokenPair(t *auth.TokenPair) LoginResponse {
	return LoginResponse{
		AccessToken: t.AccessToken,
		ExpiresAt:   t.ExpiresAt,
		TokenType:   t.TokenType,
		Username:    t.Username,
		IsAdmin:     t.IsAdmin,
	}
}

// ConfirmPasswordRequest re-authenticates before destructive actions.
type ConfirmPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}
