package suggest

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GenAI is a Generator backed by the Gemini API.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a Gemini-backed Generator.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAI{client: client, model: model}, nil
}

// Generate sends the prompt and returns the concatenated response text.
func (g *GenAI) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the generator name.
func (g *GenAI) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

var _ Generator = (*GenAI)(nil)
