package inbox

import (
	"github.com/devvault2026/revampai/internal/events"
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/logger"
)

// Module is the inbox bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

func NewModule(leads LeadStore, bus events.Bus, log *logger.Logger) *Module {
	service := NewService(leads, bus, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "inbox" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(
		ctx.Protected.Group("/leads"),
		ctx.Protected.Group("/messages"),
	)
}

// Service exposes the message recorder to the outreach sender and the IMAP
// watcher.
func (m *Module) Service() *Service { return m.service }
