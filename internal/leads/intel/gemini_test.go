package intel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/logger"

	"golang.org/x/time/rate"
)

type fakeGenerator struct {
	jsonPayload string
	textPayload string
	err         error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.textPayload, nil
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, prompt string, out any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.jsonPayload), out)
}

func newTestGateway(client Generator) *GeminiGateway {
	return &GeminiGateway{
		client:  client,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     logger.New("development"),
	}
}

func TestGenerateScore(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		err      error
		wantKind apperr.Kind
		want     int
	}{
		{"valid score", `{"score": 85, "rationale": "outdated site"}`, nil, apperr.KindUnknown, 85},
		{"score above range", `{"score": 120}`, nil, apperr.KindGateway, 0},
		{"score below range", `{"score": -5}`, nil, apperr.KindGateway, 0},
		{"transport failure", ``, errors.New("connection reset"), apperr.KindGateway, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(&fakeGenerator{jsonPayload: tt.payload, err: tt.err})
			resp, err := gw.Generate(context.Background(), Request{Kind: KindScore, Lead: &domain.Lead{Name: "Joe's Plumbing"}})

			if tt.wantKind != apperr.KindUnknown {
				if err == nil {
					t.Fatal("expected an error")
				}
				if got := apperr.GetKind(err); got != tt.wantKind {
					t.Fatalf("error kind = %v, want %v", got, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Score == nil || resp.Score.Score != tt.want {
				t.Fatalf("score = %+v, want %d", resp.Score, tt.want)
			}
		})
	}
}

func TestGenerateScoutRejectsEmptyAndNameless(t *testing.T) {
	gw := newTestGateway(&fakeGenerator{jsonPayload: `[]`})
	if _, err := gw.Generate(context.Background(), Request{Kind: KindScout, Niche: "Plumbers", Location: "Austin, TX", BatchSize: 5}); !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("empty discovery: error = %v, want gateway error", err)
	}

	gw = newTestGateway(&fakeGenerator{jsonPayload: `[{"location": "Austin, TX"}]`})
	if _, err := gw.Generate(context.Background(), Request{Kind: KindScout, Niche: "Plumbers", Location: "Austin, TX", BatchSize: 5}); !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("nameless result: error = %v, want gateway error", err)
	}
}

func TestGenerateSiteBuildValidatesHTML(t *testing.T) {
	valid := `{"Home": "<!DOCTYPE html><html><body><h1>Joe's Plumbing</h1></body></html>"}`
	gw := newTestGateway(&fakeGenerator{jsonPayload: valid})
	resp, err := gw.Generate(context.Background(), Request{Kind: KindSiteBuild, Lead: &domain.Lead{Name: "Joe's Plumbing", StrategyDoc: "prd"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.SitePages) != 1 {
		t.Fatalf("pages = %d, want 1", len(resp.SitePages))
	}

	empty := `{"Home": "   "}`
	gw = newTestGateway(&fakeGenerator{jsonPayload: empty})
	if _, err := gw.Generate(context.Background(), Request{Kind: KindSiteBuild, Lead: &domain.Lead{Name: "Joe's Plumbing", StrategyDoc: "prd"}}); !apperr.Is(err, apperr.KindGateway) {
		t.Fatalf("empty page: error = %v, want gateway error", err)
	}
}

func TestGenerateSiteEditStripsFence(t *testing.T) {
	fenced := "```html\n<!DOCTYPE html><html><body><p>updated</p></body></html>\n```"
	gw := newTestGateway(&fakeGenerator{textPayload: fenced})
	resp, err := gw.Generate(context.Background(), Request{Kind: KindSiteEdit, PageName: "Home", PageHTML: "<html></html>", Instruction: "make the headline bolder"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HTML == "" || resp.HTML[0] == '`' {
		t.Fatalf("fence not stripped: %q", resp.HTML)
	}
}

func TestValidatePageHTML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"full document", "<!DOCTYPE html><html><body><h1>Hi</h1></body></html>", false},
		{"bare text body", "<html><body>hello</body></html>", false},
		{"empty", "", true},
		{"whitespace only", "   \n ", true},
		{"empty body", "<html><body>  </body></html>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePageHTML(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePageHTML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
