package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Ollama asks a local Ollama server over its HTTP API.
type Ollama struct {
	client *resty.Client
	model  string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates an Ollama backend for the server at baseURL.
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		client: resty.New().SetBaseURL(baseURL),
		model:  model,
	}
}

// Ask implements Asker using a non-streaming /api/generate call.
func (o *Ollama) Ask(ctx context.Context, prompt string) (string, error) {
	var out ollamaResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(ollamaRequest{Model: o.model, Prompt: prompt}).
		SetResult(&out).
		SetError(&out).
		Post("/api/generate")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: ollama", ErrTimeout)
		}
		return "", fmt.Errorf("%w: ollama: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		if out.Error != "" {
			return "", fmt.Errorf("backend: ollama %s: %s", resp.Status(), out.Error)
		}
		return "", fmt.Errorf("backend: ollama %s", resp.Status())
	}
	return out.Response, nil
}

// Probe lists the server's local models.
func (o *Ollama) Probe(ctx context.Context) error {
	resp, err := o.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("%w: ollama: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: ollama %s", ErrUnavailable, resp.Status())
	}
	return nil
}
