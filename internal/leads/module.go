// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"github.com/devvault2026/revampai/internal/events"
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/internal/leads/handler"
	"github.com/devvault2026/revampai/internal/leads/intel"
	"github.com/devvault2026/revampai/internal/leads/lifecycle"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler    *handler.Handler
	controller *lifecycle.Controller
	repo       *repository.Repository
}

// NewModule wires the lifecycle controller with its gateway and storage.
// profiles and archive are optional collaborators supplied by the agents
// and sitestore modules.
func NewModule(pool *pgxpool.Pool, gateway intel.Gateway, profiles lifecycle.ProfileProvider, archive lifecycle.SiteArchiver, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	controller := lifecycle.New(repo, gateway, profiles, archive, bus, log)

	return &Module{
		handler:    handler.New(controller, repo),
		controller: controller,
		repo:       repo,
	}
}

func (m *Module) Name() string { return "leads" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	sessions := ctx.Protected.Group("/sessions")
	leads := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(sessions, leads)
}

// Repository exposes lead storage to sibling modules (calls, inbox, outreach).
func (m *Module) Repository() *repository.Repository { return m.repo }

// Controller exposes the lifecycle controller for background workers.
func (m *Module) Controller() *lifecycle.Controller { return m.controller }
