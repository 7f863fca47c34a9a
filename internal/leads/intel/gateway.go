// Package intel is the generative-AI gateway for the leads bounded context.
// All enrichment flows go through a single Generate capability over a closed
// set of request kinds, so callers depend on one small, mockable interface.
package intel

import (
	"context"

	agentdomain "github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/platform/apperr"
)

// Kind tags one variant of gateway request.
type Kind string

const (
	KindScout       Kind = "scout"
	KindDossier     Kind = "dossier"
	KindScore       Kind = "score"
	KindCompetitors Kind = "competitors"
	KindStrategy    Kind = "strategy"
	KindSiteBuild   Kind = "site_build"
	KindOutreach    Kind = "outreach"
	KindSiteEdit    Kind = "site_edit"
	KindAgentTest   Kind = "agent_test"
)

// Request is one tagged gateway request. Only the fields relevant to the
// request's Kind are read; the rest are ignored.
type Request struct {
	Kind Kind

	// Scout / Competitors.
	Niche     string
	Location  string
	BatchSize int
	Mode      string

	// Lead context for enrichment kinds.
	Lead *domain.Lead

	// Persona context. Nil falls back to the built-in default persona.
	Profile *agentdomain.Profile

	// Strategy context (BuildSite passes the strategy document implicitly
	// through Lead; SiteEdit passes the page under edit here).
	PageName    string
	PageHTML    string
	Instruction string

	// AgentTest input.
	Input string
}

// ScoutedLead is one discovery result. It carries only discovery fields;
// the lifecycle controller turns these into Scouted leads.
type ScoutedLead struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Category string `json:"category"`
	Email    string `json:"email"`
}

// DossierResult is the psychology profile produced by the dossier kind.
type DossierResult struct {
	Psychology string `json:"psychology"`
}

// ScoreResult is the propensity assessment produced by the score kind.
type ScoreResult struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// OutreachResult is the generated outreach copy.
type OutreachResult struct {
	EmailSubject string `json:"emailSubject"`
	EmailBody    string `json:"emailBody"`
	SMSBody      string `json:"smsBody"`
}

// Response carries the result of one Generate call. Exactly one field group
// is populated, matching the request's Kind.
type Response struct {
	Scouted     []ScoutedLead
	Dossier     *DossierResult
	Score       *ScoreResult
	Competitors []domain.Competitor
	Strategy    string
	SitePages   map[string]string
	Outreach    *OutreachResult
	HTML        string
	Text        string
}

// Gateway is the single capability the lifecycle controller consumes.
// Implementations must return a typed gateway error for transport failures
// and for content failures (missing fields, out-of-range values) alike.
type Gateway interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Disabled stands in when no API key is configured. Every request fails
// with a configuration error before any network call.
type Disabled struct{}

var _ Gateway = Disabled{}

func (Disabled) Generate(context.Context, Request) (Response, error) {
	return Response{}, apperr.Configuration("AI is not configured").WithOp("intel.generate")
}
