package auth

import (
	"context"
	"testing"

	"stocktake/internal/core/apperror"
)

func testService(t *testing.T) *Service {
	t.Helper()
	adminHash, err := HashPassword("s3cret-admin")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	opHash, err := HashPassword("count2026")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	operators := []Operator{
		{ID: "1", Username: "admin", PasswordHash: adminHash, IsAdmin: true},
		{ID: "2", Username: "operator", PasswordHash: opHash},
	}
	return NewService(operators, NewJWTService(DefaultJWTConfig("test-secret")))
}

func TestLogin(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, Credentials{Username: "admin", Password: "s3cret-admin"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected non-empty access token")
	}
	if !pair.IsAdmin {
		t.Error("admin flag should be set")
	}

	// The issued token round-trips through validation.
	user, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if user.Username != "admin" || !user.IsAdmin {
		t.Errorf("unexpected user context: %+v", user)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		creds Credentials
		code  string
	}{
		{"wrong password", Credentials{Username: "admin", Password: "nope"}, apperror.CodeUnauthorized},
		{"unknown user", Credentials{Username: "ghost", Password: "nope"}, apperror.CodeUnauthorized},
		{"empty credentials", Credentials{}, apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.creds)
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				t.Fatalf("want AppError, got %v", err)
			}
			if appErr.Code != tt.code {
				t.Errorf("want code %s, got %s", tt.code, appErr.Code)
			}
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testService(t)
	pair, err := svc.Login(context.Background(), Credentials{Username: "operator", Password: "count2026"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(pair.AccessToken); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestConfirmPassword(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if err := svc.ConfirmPassword(ctx, "admin", "s3cret-admin"); err != nil {
		t.Fatalf("ConfirmPassword failed: %v", err)
	}
	if err := svc.ConfirmPassword(ctx, "admin", "wrong"); err == nil {
		t.Error("wrong password must be rejected")
	}
	// Non-admin accounts cannot confirm destructive actions.
	if err := svc.ConfirmPassword(ctx, "operator", "count2026"); err == nil {
		t.Error("non-admin confirmation must be rejected")
	}
}
