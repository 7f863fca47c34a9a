package auth

import (
	"context"
	"testing"
	"time"

	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthConfig struct {
	email string
	hash  string
}

func (f fakeAuthConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (f fakeAuthConfig) GetAccessTokenTTL() time.Duration { return time.Hour }
func (f fakeAuthConfig) GetOperatorEmail() string         { return f.email }
func (f fakeAuthConfig) GetOperatorPasswordHash() string  { return f.hash }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestLoginIssuesAccessToken(t *testing.T) {
	cfg := fakeAuthConfig{email: "operator@revampai.dev", hash: hashPassword(t, "hunter2")}
	service := NewService(cfg, logger.New("development"))

	tokens, err := service.Login(context.Background(), "Operator@RevampAI.dev", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tokens.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", tokens.TokenType)
	}

	parsed, err := jwt.Parse(tokens.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.GetJWTAccessSecret()), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "access" {
		t.Errorf("type claim = %v, want access", claims["type"])
	}
	if claims["sub"] != OperatorID(cfg.email).String() {
		t.Errorf("sub claim = %v, want %s", claims["sub"], OperatorID(cfg.email))
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	cfg := fakeAuthConfig{email: "operator@revampai.dev", hash: hashPassword(t, "hunter2")}
	service := NewService(cfg, logger.New("development"))

	_, err := service.Login(context.Background(), "operator@revampai.dev", "wrong")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	cfg := fakeAuthConfig{email: "operator@revampai.dev", hash: hashPassword(t, "hunter2")}
	service := NewService(cfg, logger.New("development"))

	_, err := service.Login(context.Background(), "someone@else.dev", "hunter2")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestLoginUnconfiguredOperator(t *testing.T) {
	service := NewService(fakeAuthConfig{}, logger.New("development"))

	_, err := service.Login(context.Background(), "operator@revampai.dev", "hunter2")
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("Login() error = %v, want configuration error", err)
	}
}

func TestOperatorIDIsStable(t *testing.T) {
	a := OperatorID("Operator@RevampAI.dev")
	b := OperatorID("operator@revampai.dev")
	if a != b {
		t.Errorf("operator ID not case-insensitive: %s != %s", a, b)
	}
}
