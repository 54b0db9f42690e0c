package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/completion"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/listener"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/terminal"
)

type stubAsker struct {
	reply string
	err   error
}

func (s stubAsker) Ask(context.Context, string) (string, error) { return s.reply, s.err }

type stubEditor struct {
	line     string
	replaced string
}

func (e *stubEditor) CurrentLine(context.Context) (string, error) { return e.line, nil }

func (e *stubEditor) ReplaceLine(_ context.Context, line string) error {
	e.replaced = line
	return nil
}

func newLive(t *testing.T, asker stubAsker, ed terminal.LineEditor) *liveCompleter {
	t.Helper()
	history := store.OpenCompletionLog(filepath.Join(t.TempDir(), "completions.json"), zap.NewNop())
	svc := completion.New(asker, history, time.Second, zap.NewNop())
	return &liveCompleter{svc: svc, editor: ed, log: zap.NewNop()}
}

func TestLiveCompleterHandle(t *testing.T) {
	tests := []struct {
		name       string
		asker      stubAsker
		line       string
		wantStatus string
		wantText   string
		wantLine   string
	}{
		{"completes", stubAsker{reply: "git status"}, "git st", listener.StatusOK, "git status", "git status"},
		{"unchanged", stubAsker{reply: "git status"}, "git status", listener.StatusUnchanged, "git status", ""},
		{"backend error", stubAsker{err: errors.New("boom")}, "git st", listener.StatusError, "", ""},
		{"empty line", stubAsker{reply: "ls"}, "   ", listener.StatusError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := &stubEditor{line: tt.line}
			live := newLive(t, tt.asker, ed)

			got := live.handle(context.Background())
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q (text %q)", got.Status, tt.wantStatus, got.Text)
			}
			if tt.wantText != "" && got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
			if ed.replaced != tt.wantLine {
				t.Errorf("replaced = %q, want %q", ed.replaced, tt.wantLine)
			}
		})
	}
}

func TestLiveCompleterUnsupportedTerminal(t *testing.T) {
	live := newLive(t, stubAsker{reply: "ls"}, terminal.None{})
	got := live.handle(context.Background())
	if got.Status != listener.StatusError {
		t.Errorf("status = %q, want %q", got.Status, listener.StatusError)
	}
}

func TestLiveCompleterApply(t *testing.T) {
	ed := &stubEditor{line: "ls"}
	live := newLive(t, stubAsker{reply: "ls -la"}, ed)

	cfg := config.Defaults()
	cfg.Backend.CompletionTimeoutSeconds = 7
	cfg.Completion.PreferHistory = true
	cfg.Terminal.Kind = config.TerminalNone
	live.apply(&cfg)

	if live.svc.Timeout != 7*time.Second {
		t.Errorf("timeout = %v, want 7s", live.svc.Timeout)
	}
	if !live.svc.PreferHistory {
		t.Error("PreferHistory not applied")
	}
	if _, ok := live.editor.(terminal.None); !ok {
		t.Errorf("editor = %T, want terminal.None", live.editor)
	}

	cfg.Terminal.Kind = "screen"
	live.apply(&cfg)
	if _, ok := live.editor.(terminal.None); !ok {
		t.Errorf("invalid terminal kind replaced the editor with %T", live.editor)
	}
}
