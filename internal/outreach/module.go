package outreach

import (
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"
)

// Module is the outreach bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

func NewModule(leads LeadStore, sender Sender, recorder Recorder, cfg config.OutreachConfig, log *logger.Logger) *Module {
	service := NewService(leads, sender, recorder, cfg, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "outreach" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Service exposes the sender to the background worker.
func (m *Module) Service() *Service { return m.service }
