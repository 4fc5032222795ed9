// Package auth provides operator authentication for the counting service.
package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stocktake/internal/core/apperror"
	"stocktake/pkg/logger"
)

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the login response payload.
type TokenPair struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
	Username    string    `json:"username"`
	IsAdmin     bool      `json:"isAdmin"`
}

// Operator is a configured account. The service runs with a small fixed
// set of accounts defined at deploy time: counting terminals share the
// operator login, the supervisor uses the admin one.
type Operator struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
}

// Service authenticates operators against the configured account set and
// issues access tokens.
type Service struct {
	operators  []Operator
	jwtService *JWTService
}

// NewService creates an auth service.
func NewService(operators []Operator, jwtService *JWTService) *Service {
	return &Service{operators: operators, jwtService: jwtService}
}

// HashPassword hashes a plaintext password for operator configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) find(username string) *Operator {
	for i := range s.operators {
		if s.operators[i].Username == username {
			return &s.operators[i]
		}
	}
	return nil
}

// Login authenticates an operator and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	op := s.find(creds.Username)
	if op == nil {
		// Burn a comparison so unknown usernames cost the same as bad passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(creds.Password))
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn(ctx, "failed login attempt", "username", creds.Username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(op.ID, op.Username, op.IsAdmin)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "operator logged in", "username", op.Username)
	return &TokenPair{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
		Username:    op.Username,
		IsAdmin:     op.IsAdmin,
	}, nil
}

// ConfirmPassword re-verifies an admin password for destructive actions
// (full inventory reset). The caller names the acting user.
func (s *Service) ConfirmPassword(ctx context.Context, username, password string) error {
	op := s.find(username)
	if op == nil || !op.IsAdmin {
		return apperror.NewForbidden("admin confirmation required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		logger.Warn(ctx, "reset confirmation rejected", "username", username)
		return apperror.NewUnauthorized("invalid credentials")
	}
	return nil
}
