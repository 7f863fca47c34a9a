// Package auth issues access tokens for the single operator account. There
// is no user table: the operator's email and bcrypt password hash come from
// configuration.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Service struct {
	cfg config.AuthConfig
	log *logger.Logger
}

func NewService(cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// Login verifies the operator credentials and issues a signed access token.
// Credential mismatches are indistinguishable from unknown emails.
func (s *Service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	const op = "auth.login"

	operatorEmail := s.cfg.GetOperatorEmail()
	passwordHash := s.cfg.GetOperatorPasswordHash()
	if operatorEmail == "" || passwordHash == "" {
		return TokenResponse{}, apperr.Configuration("operator account is not configured").WithOp(op)
	}

	if !strings.EqualFold(strings.TrimSpace(email), operatorEmail) {
		return TokenResponse{}, apperr.Unauthorized("invalid credentials").WithOp(op)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt", "email", email)
		return TokenResponse{}, apperr.Unauthorized("invalid credentials").WithOp(op)
	}

	return s.issueToken(operatorEmail)
}

func (s *Service) issueToken(operatorEmail string) (TokenResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":  OperatorID(operatorEmail).String(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return TokenResponse{}, apperr.Internal("failed to sign token").WithOp("auth.issue_token")
	}

	return TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// OperatorID derives a stable UUID for the operator from their email, so the
// subject claim survives restarts without a user table.
func OperatorID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email)))
}
