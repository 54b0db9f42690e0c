// Package terminal reads and rewrites the command line the user is typing in
// an interactive shell.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
)

// ErrUnsupported is returned by editors that cannot reach a terminal.
var ErrUnsupported = errors.New("terminal: automation not configured")

// LineEditor reads and replaces the command line being edited.
type LineEditor interface {
	CurrentLine(ctx context.Context) (string, error)
	ReplaceLine(ctx context.Context, line string) error
}

// None is a LineEditor for setups without terminal automation.
type None struct{}

// CurrentLine implements LineEditor.
func (None) CurrentLine(context.Context) (string, error) { return "", ErrUnsupported }

// ReplaceLine implements LineEditor.
func (None) ReplaceLine(context.Context, string) error { return ErrUnsupported }

// New returns the editor selected by cfg.Kind.
func New(cfg config.TerminalConfig) (LineEditor, error) {
	switch cfg.Kind {
	case config.TerminalTmux:
		var prompt *regexp.Regexp
		if cfg.PromptPattern != "" {
			re, err := regexp.Compile(cfg.PromptPattern)
			if err != nil {
				return nil, fmt.Errorf("terminal: prompt pattern: %w", err)
			}
			prompt = re
		}
		return NewTmux(cfg.Target, prompt), nil
	case config.TerminalNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("terminal: unknown kind %q", cfg.Kind)
	}
}
