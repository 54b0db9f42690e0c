// Package backend talks to the AI that turns partial input into shell
// commands and quiz questions. Every implementation is a plain Asker: one
// prompt in, raw text out. Callers bound each call with a context deadline.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
)

var (
	// ErrTimeout means the backend did not answer before the deadline.
	ErrTimeout = errors.New("backend: timed out")
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("backend: unavailable")
)

// Asker sends one prompt and returns the raw response text.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Prober is implemented by backends that can check they are reachable
// without spending a real request.
type Prober interface {
	Probe(ctx context.Context) error
}

// AskWithin calls a.Ask with timeout applied to ctx. A context deadline is
// reported as ErrTimeout.
func AskWithin(ctx context.Context, a Asker, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := a.Ask(ctx, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return "", fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, err)
	}
	return out, err
}

// Probe checks a with a bounded wait. Backends without a Prober are assumed
// reachable. A zero timeout skips the check.
func Probe(ctx context.Context, a Asker, timeout time.Duration) error {
	p, ok := a.(Prober)
	if !ok || timeout <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Probe(ctx)
}

// Unavailable is an Asker that fails every call with Err. It stands in for a
// backend that could not be constructed so that explicit invocations still
// fail per call.
type Unavailable struct {
	Err error
}

// Ask implements Asker.
func (u Unavailable) Ask(context.Context, string) (string, error) {
	if u.Err == nil {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, u.Err)
}

// New builds the backend selected by cfg.Backend.Kind.
func New(ctx context.Context, cfg *config.Config) (Asker, error) {
	switch cfg.Backend.Kind {
	case config.BackendCLI, "":
		return &CLI{
			Command:    cfg.Backend.Command,
			PromptFlag: cfg.Backend.PromptFlag,
			Model:      cfg.Backend.Model,
		}, nil
	case config.BackendGenAI:
		key := os.Getenv(cfg.GenAI.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%w: $%s is not set", ErrUnavailable, cfg.GenAI.APIKeyEnv)
		}
		return NewGenAI(ctx, key, cfg.GenAI.Model)
	case config.BackendOllama:
		return NewOllama(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("backend: unknown kind %q", cfg.Backend.Kind)
	}
}
