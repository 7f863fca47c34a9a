package sitestore

import (
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/logger"
)

// Module is the sitestore bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires share links against the archiver. linker may be nil when
// MinIO is not configured; share endpoints then return a configuration error.
func NewModule(leads LeadStore, linker Linker, log *logger.Logger) *Module {
	service := NewService(leads, linker, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "sitestore" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}
