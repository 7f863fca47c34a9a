// Package lifecycle drives leads through the ordered enrichment stages:
// scouting, dossier, strategy, site build and outreach copy. Each stage is
// one or more AI gateway calls whose results are applied as a single atomic
// patch; a failed stage leaves the lead in its last-known-good state.
package lifecycle

import (
	"context"
	"errors"

	agentdomain "github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/internal/events"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/intel"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"
	"github.com/devvault2026/revampai/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxScoutBatchSize caps one discovery run.
const MaxScoutBatchSize = 20

// LeadStore is the slice of the repository the controller mutates through.
// All enrichment writes go through Replace (whole-lead replace by id).
type LeadStore interface {
	CreateBatch(ctx context.Context, leads []domain.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Replace(ctx context.Context, lead domain.Lead) (domain.Lead, error)
}

// ProfileProvider resolves agent personas for gateway calls.
type ProfileProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*agentdomain.Profile, error)
}

// SiteArchiver mirrors generated pages to shareable storage. Archival is
// best effort: a failing archiver never fails a stage.
type SiteArchiver interface {
	StorePages(ctx context.Context, leadID uuid.UUID, pages map[string]string) error
}

// Controller owns the lead state machine.
type Controller struct {
	store    LeadStore
	gateway  intel.Gateway
	profiles ProfileProvider
	archive  SiteArchiver
	bus      events.Bus
	log      *logger.Logger
}

// New creates the lifecycle controller. profiles and archive may be nil;
// a nil profiles provider always yields the default persona.
func New(store LeadStore, gateway intel.Gateway, profiles ProfileProvider, archive SiteArchiver, bus events.Bus, log *logger.Logger) *Controller {
	return &Controller{
		store:    store,
		gateway:  gateway,
		profiles: profiles,
		archive:  archive,
		bus:      bus,
		log:      log,
	}
}

// Scout discovers batchSize new leads for the niche/location and commits
// them to the session in one transaction. No partial batches: a gateway or
// storage failure commits nothing.
func (c *Controller) Scout(ctx context.Context, sessionID uuid.UUID, niche, location string, batchSize int, mode string) ([]domain.Lead, error) {
	if niche == "" || location == "" {
		return nil, apperr.Validation("niche and location are required").WithOp("leads.scout")
	}
	if batchSize < 1 || batchSize > MaxScoutBatchSize {
		return nil, apperr.Validation("batch size must be between 1 and 20").WithOp("leads.scout")
	}

	resp, err := c.gateway.Generate(ctx, intel.Request{
		Kind:      intel.KindScout,
		Niche:     niche,
		Location:  location,
		BatchSize: batchSize,
		Mode:      mode,
	})
	if err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(resp.Scouted))
	for _, s := range resp.Scouted {
		lead := domain.Lead{
			ID:        uuid.New(),
			SessionID: sessionID,
			Name:      s.Name,
			Location:  s.Location,
			Phone:     normalizePhone(s.Phone),
			Website:   s.Website,
			Category:  s.Category,
			Email:     s.Email,
			Status:    domain.StatusScouted,
		}
		leads = append(leads, lead)
	}

	if err := c.store.CreateBatch(ctx, leads); err != nil {
		c.log.DatabaseError("leads.create_batch", err)
		return nil, apperr.Internal("failed to store scouted leads").WithOp("leads.scout")
	}

	for _, lead := range leads {
		c.bus.Publish(ctx, events.LeadScouted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sessionID,
			LeadID:    lead.ID.String(),
			Company:   lead.Name,
			Niche:     niche,
			Location:  location,
		})
	}

	return leads, nil
}

// DeepDive runs the three independent dossier calls (psychology profile,
// propensity score, competitor analysis) concurrently and applies all three
// results as one atomic patch. Any failure leaves the lead unchanged.
// Safe to re-run from any later status; the status never regresses.
func (c *Controller) DeepDive(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := c.getLead(ctx, leadID, "leads.deep_dive")
	if err != nil {
		return domain.Lead{}, err
	}

	var (
		dossier     *intel.DossierResult
		score       *intel.ScoreResult
		competitors []domain.Competitor
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		resp, err := c.gateway.Generate(groupCtx, intel.Request{Kind: intel.KindDossier, Lead: &lead})
		if err != nil {
			return err
		}
		dossier = resp.Dossier
		return nil
	})
	group.Go(func() error {
		resp, err := c.gateway.Generate(groupCtx, intel.Request{Kind: intel.KindScore, Lead: &lead})
		if err != nil {
			return err
		}
		score = resp.Score
		return nil
	})
	group.Go(func() error {
		resp, err := c.gateway.Generate(groupCtx, intel.Request{Kind: intel.KindCompetitors, Niche: lead.Category, Location: lead.Location})
		if err != nil {
			return err
		}
		competitors = resp.Competitors
		return nil
	})

	if err := group.Wait(); err != nil {
		return domain.Lead{}, err
	}

	lead.Psychology = dossier.Psychology
	scoreValue := score.Score
	lead.PropensityScore = &scoreValue
	lead.Competitors = competitors
	c.advance(&lead, domain.StatusDossierReady)

	updated, err := c.replace(ctx, lead, "leads.deep_dive")
	if err != nil {
		return domain.Lead{}, err
	}

	c.bus.Publish(ctx, events.LeadEnriched{
		BaseEvent: events.NewBaseEvent(),
		SessionID: updated.SessionID,
		LeadID:    updated.ID.String(),
		Score:     scoreValue,
	})

	return updated, nil
}

// GenerateStrategy produces the strategy document for a lead. Requires the
// dossier's competitor list; fails with a precondition error before any
// gateway call otherwise.
func (c *Controller) GenerateStrategy(ctx context.Context, leadID uuid.UUID, profileID *uuid.UUID) (domain.Lead, error) {
	lead, err := c.getLead(ctx, leadID, "leads.generate_strategy")
	if err != nil {
		return domain.Lead{}, err
	}
	if len(lead.Competitors) == 0 {
		return domain.Lead{}, apperr.Precondition("a deep dive must complete before generating a strategy").WithOp("leads.generate_strategy")
	}

	profile, err := c.resolveProfile(ctx, profileID)
	if err != nil {
		return domain.Lead{}, err
	}

	resp, err := c.gateway.Generate(ctx, intel.Request{Kind: intel.KindStrategy, Lead: &lead, Profile: profile})
	if err != nil {
		return domain.Lead{}, err
	}

	lead.StrategyDoc = resp.Strategy
	c.advance(&lead, domain.StatusStrategyReady)

	updated, err := c.replace(ctx, lead, "leads.generate_strategy")
	if err != nil {
		return domain.Lead{}, err
	}

	c.bus.Publish(ctx, events.LeadStrategyReady{
		BaseEvent: events.NewBaseEvent(),
		SessionID: updated.SessionID,
		LeadID:    updated.ID.String(),
	})

	return updated, nil
}

// BuildSite generates the demo site and the outreach copy. Both gateway
// calls must succeed before either result is applied: the site pages and
// the outreach copy form one atomic patch, along with the deal value.
func (c *Controller) BuildSite(ctx context.Context, leadID uuid.UUID, profileID *uuid.UUID) (domain.Lead, error) {
	lead, err := c.getLead(ctx, leadID, "leads.build_site")
	if err != nil {
		return domain.Lead{}, err
	}
	if !lead.HasStrategy() {
		return domain.Lead{}, apperr.Precondition("a strategy document must exist before building a site").WithOp("leads.build_site")
	}

	profile, err := c.resolveProfile(ctx, profileID)
	if err != nil {
		return domain.Lead{}, err
	}

	var (
		pages    map[string]string
		outreach *intel.OutreachResult
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		resp, err := c.gateway.Generate(groupCtx, intel.Request{Kind: intel.KindSiteBuild, Lead: &lead, Profile: profile})
		if err != nil {
			return err
		}
		pages = resp.SitePages
		return nil
	})
	group.Go(func() error {
		resp, err := c.gateway.Generate(groupCtx, intel.Request{Kind: intel.KindOutreach, Lead: &lead, Profile: profile})
		if err != nil {
			return err
		}
		outreach = resp.Outreach
		return nil
	})

	if err := group.Wait(); err != nil {
		return domain.Lead{}, err
	}

	lead.SitePages = pages
	lead.OutreachSubject = outreach.EmailSubject
	lead.OutreachBody = outreach.EmailBody
	lead.OutreachSMS = outreach.SMSBody
	lead.DealValue = domain.DefaultDealValue
	c.advance(&lead, domain.StatusOutreachReady)

	updated, err := c.replace(ctx, lead, "leads.build_site")
	if err != nil {
		return domain.Lead{}, err
	}

	if c.archive != nil {
		if err := c.archive.StorePages(ctx, updated.ID, pages); err != nil {
			c.log.Warn("site archive failed", "leadId", updated.ID, "error", err)
		}
	}

	c.bus.Publish(ctx, events.LeadOutreachReady{
		BaseEvent: events.NewBaseEvent(),
		SessionID: updated.SessionID,
		LeadID:    updated.ID.String(),
		Company:   updated.Name,
		Email:     updated.Email,
	})

	return updated, nil
}

// RunFullPipeline chains DeepDive, GenerateStrategy and BuildSite. Each
// stage's own atomic patch persists: a failure aborts the chain but keeps
// the progress of the stages that already completed. The returned lead is
// the last good state.
func (c *Controller) RunFullPipeline(ctx context.Context, leadID uuid.UUID, profileID *uuid.UUID) (domain.Lead, error) {
	lead, err := c.DeepDive(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	withStrategy, err := c.GenerateStrategy(ctx, leadID, profileID)
	if err != nil {
		return lead, err
	}

	final, err := c.BuildSite(ctx, leadID, profileID)
	if err != nil {
		return withStrategy, err
	}

	return final, nil
}

// EditSitePage applies a free-text instruction to one generated page and
// replaces only that page. The lead's status is untouched.
func (c *Controller) EditSitePage(ctx context.Context, leadID uuid.UUID, pageName, instruction string, profileID *uuid.UUID) (string, error) {
	if instruction == "" {
		return "", apperr.Validation("an edit instruction is required").WithOp("leads.edit_site_page")
	}

	lead, err := c.getLead(ctx, leadID, "leads.edit_site_page")
	if err != nil {
		return "", err
	}

	current, ok := lead.SitePages[pageName]
	if !ok {
		return "", apperr.NotFound("page not found on this lead").WithOp("leads.edit_site_page")
	}

	profile, err := c.resolveProfile(ctx, profileID)
	if err != nil {
		return "", err
	}

	resp, err := c.gateway.Generate(ctx, intel.Request{
		Kind:        intel.KindSiteEdit,
		Lead:        &lead,
		Profile:     profile,
		PageName:    pageName,
		PageHTML:    current,
		Instruction: instruction,
	})
	if err != nil {
		return "", err
	}

	lead.SitePages[pageName] = resp.HTML
	if _, err := c.replace(ctx, lead, "leads.edit_site_page"); err != nil {
		return "", err
	}

	if c.archive != nil {
		if err := c.archive.StorePages(ctx, lead.ID, map[string]string{pageName: resp.HTML}); err != nil {
			c.log.Warn("site archive failed", "leadId", lead.ID, "error", err)
		}
	}

	return resp.HTML, nil
}

func (c *Controller) getLead(ctx context.Context, leadID uuid.UUID, op string) (domain.Lead, error) {
	lead, err := c.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found").WithOp(op)
		}
		c.log.DatabaseError(op, err)
		return domain.Lead{}, apperr.Internal("failed to load lead").WithOp(op)
	}
	return lead, nil
}

func (c *Controller) replace(ctx context.Context, lead domain.Lead, op string) (domain.Lead, error) {
	updated, err := c.store.Replace(ctx, lead)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found").WithOp(op)
		}
		c.log.DatabaseError(op, err)
		return domain.Lead{}, apperr.Internal("failed to store lead").WithOp(op)
	}
	return updated, nil
}

func (c *Controller) advance(lead *domain.Lead, target string) {
	next := domain.AdvanceStatus(lead.Status, target)
	if next != lead.Status {
		c.log.StageTransition(lead.ID.String(), lead.Status, next)
	}
	lead.Status = next
}

func (c *Controller) resolveProfile(ctx context.Context, profileID *uuid.UUID) (*agentdomain.Profile, error) {
	if profileID == nil || c.profiles == nil {
		return agentdomain.Default(), nil
	}
	profile, err := c.profiles.GetByID(ctx, *profileID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func normalizePhone(raw string) string {
	return phone.NormalizeE164(raw)
}
