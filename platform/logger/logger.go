// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// LeadIDKey is the context key for the lead being processed
	LeadIDKey contextKey = "lead_id"
)

// ContextWithRequestID returns a context carrying the request ID for
// log correlation across layers.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ContextWithLeadID returns a context carrying the lead ID being processed.
func ContextWithLeadID(ctx context.Context, leadID string) context.Context {
	return context.WithValue(ctx, LeadIDKey, leadID)
}

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and lead_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("lead_id", leadID))}
	}

	return newLogger
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// GatewayCall logs one call to an external gateway (AI or telephony).
func (l *Logger) GatewayCall(gateway, kind string, latencyMs float64, err error) {
	if err != nil {
		l.Error("gateway_call",
			slog.String("gateway", gateway),
			slog.String("kind", kind),
			slog.Float64("latency_ms", latencyMs),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("gateway_call",
		slog.String("gateway", gateway),
		slog.String("kind", kind),
		slog.Float64("latency_ms", latencyMs),
	)
}

// StageTransition logs a lead moving between lifecycle statuses.
func (l *Logger) StageTransition(leadID, from, to string) {
	l.Info("stage_transition",
		slog.String("lead_id", leadID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
