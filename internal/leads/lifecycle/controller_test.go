package lifecycle

import (
	"context"
	"testing"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/internal/leads/intel"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/platform/apperr"
	platformevents "github.com/devvault2026/revampai/platform/events"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads        map[uuid.UUID]domain.Lead
	replaceCalls int
}

func newFakeStore(leads ...domain.Lead) *fakeStore {
	s := &fakeStore{leads: make(map[uuid.UUID]domain.Lead)}
	for _, lead := range leads {
		s.leads[lead.ID] = lead
	}
	return s
}

func (s *fakeStore) CreateBatch(ctx context.Context, leads []domain.Lead) error {
	for _, lead := range leads {
		s.leads[lead.ID] = lead
	}
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *fakeStore) Replace(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	if _, ok := s.leads[lead.ID]; !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	s.replaceCalls++
	s.leads[lead.ID] = lead
	return lead, nil
}

// fakeGateway serves canned responses per kind and counts calls.
type fakeGateway struct {
	responses map[intel.Kind]intel.Response
	failures  map[intel.Kind]error
	calls     map[intel.Kind]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses: map[intel.Kind]intel.Response{
			intel.KindScout: {Scouted: []intel.ScoutedLead{
				{Name: "Austin Pipe Pros", Location: "Austin, TX", Phone: "+15125550101", Category: "Plumbers"},
				{Name: "Hill Country Plumbing", Location: "Austin, TX", Category: "Plumbers"},
				{Name: "Bluebonnet Drains", Location: "Austin, TX", Category: "Plumbers"},
				{Name: "Capital City Plumbing", Location: "Austin, TX", Category: "Plumbers"},
				{Name: "Lone Star Leak Repair", Location: "Austin, TX", Category: "Plumbers"},
			}},
			intel.KindDossier:     {Dossier: &intel.DossierResult{Psychology: "time-starved owner, skeptical of agencies"}},
			intel.KindScore:       {Score: &intel.ScoreResult{Score: 82, Rationale: "no website"}},
			intel.KindCompetitors: {Competitors: []domain.Competitor{{Name: "Radiant Plumbing", WhyWinning: "strong reviews"}}},
			intel.KindStrategy:    {Strategy: "# PRD\nBuild a conversion-focused site."},
			intel.KindSiteBuild:   {SitePages: map[string]string{"Home": "<html><body><h1>Home</h1></body></html>"}},
			intel.KindOutreach:    {Outreach: &intel.OutreachResult{EmailSubject: "Your new site", EmailBody: "We built you a demo.", SMSBody: "Demo ready"}},
			intel.KindSiteEdit:    {HTML: "<html><body><h1>Edited</h1></body></html>"},
		},
		failures: make(map[intel.Kind]error),
		calls:    make(map[intel.Kind]int),
	}
}

func (g *fakeGateway) Generate(ctx context.Context, req intel.Request) (intel.Response, error) {
	g.calls[req.Kind]++
	if err := g.failures[req.Kind]; err != nil {
		return intel.Response{}, err
	}
	return g.responses[req.Kind], nil
}

func newTestController(store *fakeStore, gateway *fakeGateway) *Controller {
	log := logger.New("development")
	return New(store, gateway, nil, nil, platformevents.NewInMemoryBus(log), log)
}

func scoutedLead() domain.Lead {
	return domain.Lead{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Name:      "Austin Pipe Pros",
		Location:  "Austin, TX",
		Phone:     "+15125550101",
		Category:  "Plumbers",
		Status:    domain.StatusScouted,
	}
}

func dossierReadyLead() domain.Lead {
	lead := scoutedLead()
	score := 82
	lead.Psychology = "time-starved owner"
	lead.PropensityScore = &score
	lead.Competitors = []domain.Competitor{{Name: "Radiant Plumbing", WhyWinning: "strong reviews"}}
	lead.Status = domain.StatusDossierReady
	return lead
}

func TestScoutCreatesLeadsWithEmptyDerivedFields(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	c := newTestController(store, gateway)

	sessionID := uuid.New()
	leads, err := c.Scout(context.Background(), sessionID, "Plumbers", "Austin, TX", 5, "standard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 5 {
		t.Fatalf("got %d leads, want 5", len(leads))
	}
	for _, lead := range leads {
		if lead.Status != domain.StatusScouted {
			t.Errorf("lead %s status = %q, want Scouted", lead.Name, lead.Status)
		}
		if lead.PropensityScore != nil || lead.StrategyDoc != "" || lead.SitePages != nil {
			t.Errorf("lead %s has derived fields populated at scouting time", lead.Name)
		}
		if lead.SessionID != sessionID {
			t.Errorf("lead %s not attached to the session", lead.Name)
		}
	}
	if len(store.leads) != 5 {
		t.Fatalf("store holds %d leads, want 5", len(store.leads))
	}
}

func TestScoutGatewayFailureCommitsNothing(t *testing.T) {
	store := newFakeStore()
	gateway := newFakeGateway()
	gateway.failures[intel.KindScout] = apperr.Gateway("lead discovery failed", nil)
	c := newTestController(store, gateway)

	_, err := c.Scout(context.Background(), uuid.New(), "Plumbers", "Austin, TX", 5, "standard")
	if !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("error = %v, want gateway error", err)
	}
	if len(store.leads) != 0 {
		t.Fatalf("store holds %d leads after failed scout, want 0", len(store.leads))
	}
}

func TestScoutValidatesInput(t *testing.T) {
	c := newTestController(newFakeStore(), newFakeGateway())

	tests := []struct {
		name      string
		niche     string
		location  string
		batchSize int
	}{
		{"missing niche", "", "Austin, TX", 5},
		{"missing location", "Plumbers", "", 5},
		{"zero batch", "Plumbers", "Austin, TX", 0},
		{"oversized batch", "Plumbers", "Austin, TX", 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Scout(context.Background(), uuid.New(), tt.niche, tt.location, tt.batchSize, "")
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("error = %v, want validation error", err)
			}
		})
	}
}

func TestDeepDiveAppliesAllThreeFieldsAtomically(t *testing.T) {
	lead := scoutedLead()
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	c := newTestController(store, gateway)

	updated, err := c.DeepDive(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusDossierReady {
		t.Errorf("status = %q, want Dossier_Ready", updated.Status)
	}
	if !updated.HasDossier() {
		t.Error("expected all three dossier fields populated")
	}
	if store.replaceCalls != 1 {
		t.Errorf("replace calls = %d, want exactly 1 (single atomic patch)", store.replaceCalls)
	}
}

func TestDeepDivePartialFailureLeavesLeadUnchanged(t *testing.T) {
	lead := scoutedLead()
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	gateway.failures[intel.KindCompetitors] = apperr.Gateway("competitor analysis failed", nil)
	c := newTestController(store, gateway)

	_, err := c.DeepDive(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("error = %v, want gateway error", err)
	}
	if store.replaceCalls != 0 {
		t.Fatalf("replace calls = %d, want 0 (no partial advance)", store.replaceCalls)
	}
	stored := store.leads[lead.ID]
	if stored.Psychology != "" || stored.PropensityScore != nil || stored.Competitors != nil {
		t.Error("lead mutated despite a failed dossier call")
	}
	if stored.Status != domain.StatusScouted {
		t.Errorf("status = %q, want Scouted", stored.Status)
	}
}

func TestDeepDiveRerunNeverRegressesStatus(t *testing.T) {
	lead := dossierReadyLead()
	lead.StrategyDoc = "# PRD"
	lead.Status = domain.StatusStrategyReady
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	updated, err := c.DeepDive(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusStrategyReady {
		t.Errorf("status = %q, want Strategy_Ready (rerun must not regress)", updated.Status)
	}
}

func TestGenerateStrategyPreconditionSkipsGateway(t *testing.T) {
	lead := scoutedLead() // no competitors yet
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	c := newTestController(store, gateway)

	_, err := c.GenerateStrategy(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("error = %v, want precondition error", err)
	}
	if gateway.calls[intel.KindStrategy] != 0 {
		t.Fatal("gateway was called despite a failed precondition")
	}
}

func TestGenerateStrategyAdvances(t *testing.T) {
	lead := dossierReadyLead()
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	updated, err := c.GenerateStrategy(context.Background(), lead.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusStrategyReady {
		t.Errorf("status = %q, want Strategy_Ready", updated.Status)
	}
	if updated.StrategyDoc == "" {
		t.Error("strategy document not applied")
	}
}

func TestBuildSitePreconditionRequiresStrategy(t *testing.T) {
	lead := dossierReadyLead() // no strategy yet
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	c := newTestController(store, gateway)

	_, err := c.BuildSite(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("error = %v, want precondition error", err)
	}
	if gateway.calls[intel.KindSiteBuild] != 0 || gateway.calls[intel.KindOutreach] != 0 {
		t.Fatal("gateway was called despite a failed precondition")
	}
}

func TestBuildSiteOutreachFailureAppliesNothing(t *testing.T) {
	lead := dossierReadyLead()
	lead.StrategyDoc = "# PRD"
	lead.Status = domain.StatusStrategyReady
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	gateway.failures[intel.KindOutreach] = apperr.Gateway("outreach copy generation failed", nil)
	c := newTestController(store, gateway)

	_, err := c.BuildSite(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("error = %v, want gateway error", err)
	}
	stored := store.leads[lead.ID]
	if stored.SitePages != nil {
		t.Error("site pages applied despite the outreach call failing (atomic pair violated)")
	}
	if stored.Status != domain.StatusStrategyReady {
		t.Errorf("status = %q, want Strategy_Ready", stored.Status)
	}
	if store.replaceCalls != 0 {
		t.Fatalf("replace calls = %d, want 0", store.replaceCalls)
	}
}

func TestBuildSiteAppliesCombinedPatch(t *testing.T) {
	lead := dossierReadyLead()
	lead.StrategyDoc = "# PRD"
	lead.Status = domain.StatusStrategyReady
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	updated, err := c.BuildSite(context.Background(), lead.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusOutreachReady {
		t.Errorf("status = %q, want Outreach_Ready", updated.Status)
	}
	if len(updated.SitePages) == 0 || updated.OutreachSubject == "" || updated.OutreachBody == "" {
		t.Error("combined site+outreach patch incomplete")
	}
	if updated.DealValue != domain.DefaultDealValue {
		t.Errorf("deal value = %d, want %d", updated.DealValue, domain.DefaultDealValue)
	}
	if store.replaceCalls != 1 {
		t.Errorf("replace calls = %d, want 1", store.replaceCalls)
	}
}

func TestRunFullPipelineStageTwoFailureKeepsStageOne(t *testing.T) {
	lead := scoutedLead()
	store := newFakeStore(lead)
	gateway := newFakeGateway()
	gateway.failures[intel.KindStrategy] = apperr.Gateway("strategy generation failed", nil)
	c := newTestController(store, gateway)

	lastGood, err := c.RunFullPipeline(context.Background(), lead.ID, nil)
	if !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("error = %v, want gateway error", err)
	}
	if lastGood.Status != domain.StatusDossierReady {
		t.Errorf("last good status = %q, want Dossier_Ready", lastGood.Status)
	}
	if stored := store.leads[lead.ID]; stored.Status != domain.StatusDossierReady {
		t.Errorf("stored status = %q, want Dossier_Ready (stage 1 patch retained)", stored.Status)
	}
	if gateway.calls[intel.KindSiteBuild] != 0 {
		t.Fatal("stage 3 was attempted after stage 2 failed")
	}
}

func TestRunFullPipelineCompletes(t *testing.T) {
	lead := scoutedLead()
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	final, err := c.RunFullPipeline(context.Background(), lead.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Status != domain.StatusOutreachReady {
		t.Errorf("status = %q, want Outreach_Ready", final.Status)
	}
}

func TestEditSitePageReplacesOnlyThatPage(t *testing.T) {
	lead := dossierReadyLead()
	lead.StrategyDoc = "# PRD"
	lead.SitePages = map[string]string{
		"Home":    "<html><body><h1>Home</h1></body></html>",
		"Contact": "<html><body><h1>Contact</h1></body></html>",
	}
	lead.Status = domain.StatusOutreachReady
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	html, err := c.EditSitePage(context.Background(), lead.ID, "Home", "make the headline bolder", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := store.leads[lead.ID]
	if stored.SitePages["Home"] != html {
		t.Error("edited page not stored")
	}
	if stored.SitePages["Contact"] != lead.SitePages["Contact"] {
		t.Error("untouched page was modified")
	}
	if stored.Status != domain.StatusOutreachReady {
		t.Errorf("status = %q, edit must not change status", stored.Status)
	}
}

func TestEditSitePageUnknownPage(t *testing.T) {
	lead := scoutedLead()
	store := newFakeStore(lead)
	c := newTestController(store, newFakeGateway())

	_, err := c.EditSitePage(context.Background(), lead.ID, "Pricing", "add a table", nil)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
