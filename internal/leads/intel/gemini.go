package intel

import (
	"context"
	"fmt"
	"strings"
	"time"

	agentdomain "github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/ai/gemini"
	"github.com/devvault2026/revampai/platform/logger"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Generator is the slice of the gemini client the gateway consumes.
type Generator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
	GenerateJSON(ctx context.Context, system, prompt string, out any) error
}

// GeminiGateway implements Gateway against the Gemini API. A shared rate
// limiter smooths multi-call stages (the full pipeline fires up to six
// generation calls per lead).
type GeminiGateway struct {
	client  Generator
	limiter *rate.Limiter
	log     *logger.Logger
}

var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway wraps a gemini client as the lifecycle's AI gateway.
func NewGeminiGateway(client *gemini.Client, log *logger.Logger) *GeminiGateway {
	return &GeminiGateway{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		log:     log,
	}
}

// Generate dispatches on the request's Kind. Transport failures and
// content failures (missing fields, out-of-range values, unparseable HTML)
// are both surfaced as gateway errors.
func (g *GeminiGateway) Generate(ctx context.Context, req Request) (Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Response{}, apperr.Gateway("ai gateway: rate limit wait aborted", err)
	}

	start := time.Now()
	resp, err := g.dispatch(ctx, req)
	g.log.GatewayCall("gemini", string(req.Kind), float64(time.Since(start).Milliseconds()), err)
	return resp, err
}

func (g *GeminiGateway) dispatch(ctx context.Context, req Request) (Response, error) {
	system := personaInstruction(req.Profile)

	switch req.Kind {
	case KindScout:
		var scouted []ScoutedLead
		if err := g.client.GenerateJSON(ctx, system, scoutPrompt(req), &scouted); err != nil {
			return Response{}, apperr.Gateway("lead discovery failed", err)
		}
		if len(scouted) == 0 {
			return Response{}, apperr.Gateway("lead discovery returned no results", nil)
		}
		for i, s := range scouted {
			if s.Name == "" {
				return Response{}, apperr.Gateway(fmt.Sprintf("discovery result %d is missing a business name", i), nil)
			}
		}
		return Response{Scouted: scouted}, nil

	case KindDossier:
		var dossier DossierResult
		if err := g.client.GenerateJSON(ctx, system, dossierPrompt(req), &dossier); err != nil {
			return Response{}, apperr.Gateway("dossier generation failed", err)
		}
		if strings.TrimSpace(dossier.Psychology) == "" {
			return Response{}, apperr.Gateway("dossier response is missing the psychology profile", nil)
		}
		return Response{Dossier: &dossier}, nil

	case KindScore:
		var score ScoreResult
		if err := g.client.GenerateJSON(ctx, system, scorePrompt(req), &score); err != nil {
			return Response{}, apperr.Gateway("propensity scoring failed", err)
		}
		if score.Score < 0 || score.Score > 100 {
			return Response{}, apperr.Gateway(fmt.Sprintf("propensity score %d is outside 0-100", score.Score), nil)
		}
		return Response{Score: &score}, nil

	case KindCompetitors:
		var competitors []domain.Competitor
		if err := g.client.GenerateJSON(ctx, system, competitorsPrompt(req), &competitors); err != nil {
			return Response{}, apperr.Gateway("competitor analysis failed", err)
		}
		if len(competitors) == 0 {
			return Response{}, apperr.Gateway("competitor analysis returned no entries", nil)
		}
		return Response{Competitors: competitors}, nil

	case KindStrategy:
		doc, err := g.client.GenerateText(ctx, system, strategyPrompt(req))
		if err != nil {
			return Response{}, apperr.Gateway("strategy generation failed", err)
		}
		return Response{Strategy: doc}, nil

	case KindSiteBuild:
		var pages map[string]string
		if err := g.client.GenerateJSON(ctx, system, siteBuildPrompt(req), &pages); err != nil {
			return Response{}, apperr.Gateway("site generation failed", err)
		}
		if len(pages) == 0 {
			return Response{}, apperr.Gateway("site generation returned no pages", nil)
		}
		for name, content := range pages {
			if err := validatePageHTML(content); err != nil {
				return Response{}, apperr.Gateway(fmt.Sprintf("generated page %q is not valid HTML", name), err)
			}
		}
		return Response{SitePages: pages}, nil

	case KindOutreach:
		var outreach OutreachResult
		if err := g.client.GenerateJSON(ctx, system, outreachPrompt(req), &outreach); err != nil {
			return Response{}, apperr.Gateway("outreach copy generation failed", err)
		}
		if outreach.EmailSubject == "" || outreach.EmailBody == "" {
			return Response{}, apperr.Gateway("outreach response is missing email copy", nil)
		}
		return Response{Outreach: &outreach}, nil

	case KindSiteEdit:
		edited, err := g.client.GenerateText(ctx, system, siteEditPrompt(req))
		if err != nil {
			return Response{}, apperr.Gateway("site edit failed", err)
		}
		edited = stripHTMLFence(edited)
		if err := validatePageHTML(edited); err != nil {
			return Response{}, apperr.Gateway("edited page is not valid HTML", err)
		}
		return Response{HTML: edited}, nil

	case KindAgentTest:
		text, err := g.client.GenerateText(ctx, system, req.Input)
		if err != nil {
			return Response{}, apperr.Gateway("agent test failed", err)
		}
		return Response{Text: text}, nil

	default:
		return Response{}, apperr.Internal(fmt.Sprintf("unknown gateway request kind %q", req.Kind))
	}
}

func personaInstruction(profile *agentdomain.Profile) string {
	if profile == nil {
		profile = agentdomain.Default()
	}
	return profile.SystemInstruction()
}

// validatePageHTML checks a generated page parses and actually carries
// content. The parser is lenient, so an additional body-node walk rejects
// empty or degenerate documents.
func validatePageHTML(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("page is empty")
	}

	node, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	if !hasRenderableBody(node) {
		return fmt.Errorf("page has no renderable body content")
	}
	return nil
}

func hasRenderableBody(node *html.Node) bool {
	if node.Type == html.ElementNode && node.Data == "body" {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				return true
			}
			if child.Type == html.TextNode && strings.TrimSpace(child.Data) != "" {
				return true
			}
		}
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if hasRenderableBody(child) {
			return true
		}
	}
	return false
}

func stripHTMLFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
