// Package completion turns partial shell input into a full command: it asks
// the AI backend, parses the reply, and records the result in the completion
// history.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/backend"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/response"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/terminal"
)

var (
	// ErrEmptyInput is returned for blank partial input.
	ErrEmptyInput = errors.New("completion: empty input")
	// ErrNotRecorded wraps a history write failure. The completion itself
	// succeeded and is still returned.
	ErrNotRecorded = errors.New("completion: not recorded")
	// ErrUnchanged is returned by CompleteTerminal when the completion equals
	// the current line.
	ErrUnchanged = errors.New("completion: nothing to change")
)

// Source names where a completion came from.
type Source string

const (
	SourceBackend Source = "backend"
	SourceHistory Source = "history"
)

// Result is one completed command.
type Result struct {
	Partial string
	Command string
	Source  Source
}

// History is the subset of store.CompletionLog the service uses.
type History interface {
	Record(original, completed string) (store.CompletionEntry, error)
	Suggest(partial string) (string, bool)
}

// Service completes commands. It is safe for concurrent use when History
// is.
type Service struct {
	Asker   backend.Asker
	History History
	Log     *zap.Logger

	// Timeout bounds each backend call.
	Timeout time.Duration
	// PreferHistory answers from past completions before asking the backend.
	PreferHistory bool
}

// New creates a Service.
func New(asker backend.Asker, history History, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{Asker: asker, History: history, Timeout: timeout, Log: logger}
}

// Complete resolves partial to a command and records it. When the history
// write fails the Result is still returned together with an error wrapping
// ErrNotRecorded.
func (s *Service) Complete(ctx context.Context, partial string) (Result, error) {
	res, err := s.resolve(ctx, partial)
	if err != nil {
		return Result{}, err
	}
	if err := s.record(res); err != nil {
		return res, err
	}
	return res, nil
}

// Suggest returns the most frequent past completion for partial without
// contacting the backend.
func (s *Service) Suggest(partial string) (string, bool) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return "", false
	}
	return s.History.Suggest(partial)
}

// CompleteTerminal completes the line currently being edited in ed. The line
// is replaced and the completion recorded only when the command differs from
// what is already there; otherwise ErrUnchanged is returned.
func (s *Service) CompleteTerminal(ctx context.Context, ed terminal.LineEditor) (Result, error) {
	current, err := ed.CurrentLine(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("completion: read line: %w", err)
	}
	s.Log.Debug("current line", zap.String("line", current))

	res, err := s.resolve(ctx, current)
	if err != nil {
		return Result{}, err
	}
	if res.Command == strings.TrimSpace(current) {
		return res, ErrUnchanged
	}

	if err := ed.ReplaceLine(ctx, res.Command); err != nil {
		return res, fmt.Errorf("completion: replace line: %w", err)
	}
	if err := s.record(res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) resolve(ctx context.Context, partial string) (Result, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return Result{}, ErrEmptyInput
	}

	if s.PreferHistory {
		if cmd, ok := s.History.Suggest(partial); ok {
			s.Log.Debug("answered from history", zap.String("partial", partial), zap.String("command", cmd))
			return Result{Partial: partial, Command: cmd, Source: SourceHistory}, nil
		}
	}

	raw, err := backend.AskWithin(ctx, s.Asker, backend.CompletionPrompt(partial), s.Timeout)
	if err != nil {
		s.Log.Warn("backend request failed", zap.String("partial", partial), zap.Error(err))
		return Result{}, fmt.Errorf("completion: %w", err)
	}

	cmd, err := response.ParseCompletion(raw)
	if err != nil {
		s.Log.Warn("unusable backend reply", zap.String("partial", partial), zap.String("raw", raw))
		return Result{}, fmt.Errorf("completion: %q: %w", partial, err)
	}
	return Result{Partial: partial, Command: cmd, Source: SourceBackend}, nil
}

func (s *Service) record(res Result) error {
	if _, err := s.History.Record(res.Partial, res.Command); err != nil {
		return fmt.Errorf("%w: %v", ErrNotRecorded, err)
	}
	return nil
}
