package backend

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAI asks a Gemini model through the Google GenAI SDK.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a GenAI backend using the Gemini API.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GenAI API key is required", ErrUnavailable)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create GenAI client: %v", ErrUnavailable, err)
	}
	return &GenAI{client: client, model: model}, nil
}

// Ask implements Asker.
func (g *GenAI) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("backend: genai generate: %w", err)
	}
	return resp.Text(), nil
}

// Probe fetches the configured model's metadata.
func (g *GenAI) Probe(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("%w: genai model %s: %v", ErrUnavailable, g.model, err)
	}
	return nil
}
