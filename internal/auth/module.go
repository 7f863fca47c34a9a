package auth

import (
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"
)

// Module is the auth bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

func NewModule(cfg config.AuthConfig, log *logger.Logger) *Module {
	service := NewService(cfg, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "auth" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}
