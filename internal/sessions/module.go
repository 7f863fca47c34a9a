package sessions

import (
	"github.com/devvault2026/revampai/internal/events"
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sessions bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	service := NewService(NewRepository(pool), bus, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "sessions" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/sessions"))
}

// Service exposes session management to the composition root (EnsureDefault).
func (m *Module) Service() *Service { return m.service }
