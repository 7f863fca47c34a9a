package agents

import (
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the agent profiles bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the profile CRUD and the persona tester. tester is nil
// when AI is not configured.
func NewModule(pool *pgxpool.Pool, tester Tester, val *validator.Validator) *Module {
	service := NewService(NewRepository(pool), tester, val)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "agents" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/agents"))
}

// Service exposes profile lookup to the lead and call controllers.
func (m *Module) Service() *Service { return m.service }
