// Package gemini wraps the Google GenAI SDK behind a small text/JSON surface.
// This is part of the platform layer and contains no business logic.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Config for the Gemini client.
type Config struct {
	APIKey string
	Model  string
}

// Client is a thin wrapper over genai.Client for single-turn generation.
type Client struct {
	config Config
	client *genai.Client
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key must be provided")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{config: cfg, client: client}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// GenerateText runs a single-turn completion and returns the plain text reply.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	return c.generate(ctx, system, prompt, "")
}

// GenerateJSON runs a single-turn completion in JSON mode and decodes the
// reply into out. A reply that fails to decode is a content error.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, out any) error {
	text, err := c.generate(ctx, system, prompt, "application/json")
	if err != nil {
		return err
	}

	cleaned := stripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("gemini returned malformed JSON: %w", err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, system, prompt, responseMIMEType string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if responseMIMEType != "" {
		config.ResponseMIMEType = responseMIMEType
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// stripCodeFence removes a markdown code fence if the model wrapped its JSON
// reply in one despite the JSON response MIME type.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
