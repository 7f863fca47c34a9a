package gemini

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// AgentModel adapts the Gemini client to the ADK model.LLM interface so
// persona agents can run through an adk runner.
type AgentModel struct {
	client *Client
}

// AgentModel returns an ADK-compatible view of this client.
func (c *Client) AgentModel() *AgentModel {
	return &AgentModel{client: c}
}

func (m *AgentModel) Name() string {
	return m.client.config.Model
}

// GenerateContent satisfies model.LLM. Streaming is collapsed into a single
// response; the runner tolerates that for non-streaming runs.
func (m *AgentModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		config := req.Config
		if config == nil {
			config = &genai.GenerateContentConfig{}
		}

		resp, err := m.client.client.Models.GenerateContent(ctx, m.client.config.Model, req.Contents, config)
		if err != nil {
			yield(nil, fmt.Errorf("gemini agent generate: %w", err))
			return
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			yield(nil, fmt.Errorf("gemini agent generate: empty response"))
			return
		}

		yield(&model.LLMResponse{Content: resp.Candidates[0].Content}, nil)
	}
}
