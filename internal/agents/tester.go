package agents

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/platform/ai/gemini"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const previewAppName = "persona-preview"

// PersonaTester runs a sample input through a profile's persona so the
// operator can preview its behavior before using it on real leads.
// Preview only; it plays no part in the lead lifecycle.
type PersonaTester struct {
	model *gemini.AgentModel
	runMu sync.Mutex
}

func NewPersonaTester(client *gemini.Client) *PersonaTester {
	return &PersonaTester{model: client.AgentModel()}
}

// Test builds a one-shot agent from the profile and returns its reply.
func (t *PersonaTester) Test(ctx context.Context, profile *domain.Profile, input string) (string, error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "PersonaPreview",
		Model:       t.model,
		Description: "Previews an agent persona against a sample input.",
		Instruction: profile.SystemInstruction(),
	})
	if err != nil {
		return "", fmt.Errorf("persona preview: create agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        previewAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return "", fmt.Errorf("persona preview: create runner: %w", err)
	}

	sessionID := uuid.New().String()
	userID := "preview-" + profile.ID.String()

	_, err = sessionService.Create(ctx, &session.CreateRequest{
		AppName:   previewAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("persona preview: create session: %w", err)
	}
	defer func() {
		_ = sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   previewAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{{
			Text: input,
		}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var outputText strings.Builder
	for event, err := range r.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("persona preview: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			outputText.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(outputText.String()), nil
}
