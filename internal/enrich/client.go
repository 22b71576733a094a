package enrich

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
	"github.com/trolleyhq/trolley-backend/pkg/config"
)

const maxResponseTokens = 256

// Completer is the narrow surface of the AI text-completion service.
// Decoding is pinned deterministic so repeated calls for the same item
// produce the same enrichment.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini API with deterministic decoding and a
// bounded output budget.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a Completer backed by the Gemini API.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends one prompt and returns the raw model text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  maxResponseTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
