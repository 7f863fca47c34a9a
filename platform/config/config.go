// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthConfig provides settings needed by the auth service.
type AuthConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetOperatorEmail() string
	GetOperatorPasswordHash() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// AIConfig provides settings for the generative AI gateway.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsAIEnabled() bool
}

// TelephonyConfig provides settings for the outbound voice call gateway.
type TelephonyConfig interface {
	GetTwilioAccountSID() string
	GetTwilioAuthToken() string
	GetTwilioFromNumber() string
	IsTelephonyEnabled() bool
}

// OutreachConfig provides settings for outreach email delivery.
type OutreachConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetOutreachFromName() string
	GetOutreachFromAddress() string
	IsOutreachEnabled() bool
}

// InboxConfig provides settings for the IMAP reply watcher.
type InboxConfig interface {
	GetIMAPHost() string
	GetIMAPPort() int
	GetIMAPUsername() string
	GetIMAPPassword() string
	IsInboxEnabled() bool
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketSitePages() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq background worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// AppConfig provides general application settings.
type AppConfig interface {
	GetAppBaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	AppBaseURL           string
	JWTAccessSecret      string
	AccessTokenTTL       time.Duration
	OperatorEmail        string
	OperatorPasswordHash string
	CORSAllowAll         bool
	CORSOrigins          []string
	GeminiAPIKey         string
	GeminiModel          string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioFromNumber     string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	OutreachFromName     string
	OutreachFromAddress  string
	IMAPHost             string
	IMAPPort             int
	IMAPUsername         string
	IMAPPassword         string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinioBucketSitePages string
	RedisURL             string
	AsynqQueueName       string
	AsynqConcurrency     int
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }
func (c *Config) GetOperatorEmail() string         { return c.OperatorEmail }
func (c *Config) GetOperatorPasswordHash() string  { return c.OperatorPasswordHash }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsAIEnabled() bool       { return c.GeminiAPIKey != "" }

func (c *Config) GetTwilioAccountSID() string { return c.TwilioAccountSID }
func (c *Config) GetTwilioAuthToken() string  { return c.TwilioAuthToken }
func (c *Config) GetTwilioFromNumber() string { return c.TwilioFromNumber }
func (c *Config) IsTelephonyEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

func (c *Config) GetSMTPHost() string            { return c.SMTPHost }
func (c *Config) GetSMTPPort() int               { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string        { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string        { return c.SMTPPassword }
func (c *Config) GetOutreachFromName() string    { return c.OutreachFromName }
func (c *Config) GetOutreachFromAddress() string { return c.OutreachFromAddress }
func (c *Config) IsOutreachEnabled() bool {
	return c.SMTPHost != "" && c.OutreachFromAddress != ""
}

func (c *Config) GetIMAPHost() string     { return c.IMAPHost }
func (c *Config) GetIMAPPort() int        { return c.IMAPPort }
func (c *Config) GetIMAPUsername() string { return c.IMAPUsername }
func (c *Config) GetIMAPPassword() string { return c.IMAPPassword }
func (c *Config) IsInboxEnabled() bool    { return c.IMAPHost != "" && c.IMAPUsername != "" }

func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketSitePages() string { return c.MinioBucketSitePages }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from .env (when present) and the environment.
// Required values are validated; everything else falls back to a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		JWTAccessSecret:      os.Getenv("JWT_ACCESS_SECRET"),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		OperatorEmail:        os.Getenv("OPERATOR_EMAIL"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		CORSAllowAll:         getBool("CORS_ALLOW_ALL", false),
		CORSOrigins:          splitList(os.Getenv("CORS_ORIGINS")),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:     os.Getenv("TWILIO_FROM_NUMBER"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             getInt("SMTP_PORT", 587),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		OutreachFromName:     getEnv("OUTREACH_FROM_NAME", "RevampAI"),
		OutreachFromAddress:  os.Getenv("OUTREACH_FROM_ADDRESS"),
		IMAPHost:             os.Getenv("IMAP_HOST"),
		IMAPPort:             getInt("IMAP_PORT", 993),
		IMAPUsername:         os.Getenv("IMAP_USERNAME"),
		IMAPPassword:         os.Getenv("IMAP_PASSWORD"),
		MinIOEndpoint:        os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:       os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:       os.Getenv("MINIO_SECRET_KEY"),
		MinIOUseSSL:          getBool("MINIO_USE_SSL", false),
		MinioBucketSitePages: getEnv("MINIO_BUCKET_SITE_PAGES", "site-pages"),
		RedisURL:             os.Getenv("REDIS_URL"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     getInt("ASYNQ_CONCURRENCY", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
