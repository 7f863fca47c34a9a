package calls

import (
	"github.com/devvault2026/revampai/internal/events"
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"
)

// Module is the calls bounded context implementing http.Module.
type Module struct {
	controller *Controller
	handler    *Handler
}

// NewModule wires the call controller against the telephony gateway.
func NewModule(gateway Gateway, leads LeadStore, profiles ProfileProvider, cfg config.TelephonyConfig, bus events.Bus, log *logger.Logger) *Module {
	controller := New(gateway, leads, profiles, cfg, bus, log, Options{})
	return &Module{
		controller: controller,
		handler:    NewHandler(controller),
	}
}

func (m *Module) Name() string { return "calls" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/calls"))
}

// Controller exposes the state machine to the background worker (watchdog).
func (m *Module) Controller() *Controller { return m.controller }
