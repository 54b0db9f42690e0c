package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

func TestCompletionStats(t *testing.T) {
	th := NewTheme("")
	if got := th.CompletionStats(store.CompletionStats{}, nil); !strings.Contains(got, "No completions logged yet.") {
		t.Errorf("empty stats: %q", got)
	}

	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	entries := []store.CompletionEntry{
		store.NewCompletionEntry(now, "git st", "git status"),
		store.NewCompletionEntry(now, "git st", "git status"),
		store.NewCompletionEntry(now, "ls", "ls -la"),
	}
	out := th.CompletionStats(store.ComputeCompletionStats(entries, now), entries[1:])
	for _, want := range []string{
		"Total completions:",
		"Most Used Command Prefixes",
		"Most Frequently Completed Commands",
		"Recent Completions",
		"git status",
		"ls -la",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLearningStats(t *testing.T) {
	th := NewTheme("")
	if got := th.LearningStats(store.LearningStats{}, nil); !strings.Contains(got, "No quiz questions yet") {
		t.Errorf("empty stats: %q", got)
	}

	qs := []store.Question{
		{CorrectAnswer: "tar -xzf a.tgz", TimesAsked: 4, TimesCorrect: 3},
		{CorrectAnswer: "pwd"},
	}
	out := th.LearningStats(store.ComputeLearningStats(qs, time.Now()), qs)
	for _, want := range []string{"Learning Statistics", "Question Difficulty", "tar -xzf a.tgz", "75.0%", "N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionHistory(t *testing.T) {
	th := NewTheme("")
	if got := th.SessionHistory(nil); !strings.Contains(got, "No quiz sessions") {
		t.Errorf("empty history: %q", got)
	}
	start := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	out := th.SessionHistory([]store.SessionRecord{{
		ID: "x", StartedAt: start, FinishedAt: start.Add(90 * time.Second), Correct: 3, Total: 4,
	}})
	for _, want := range []string{"3/4", "75.0%", "1m30s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a very long command line", 10, "a very lo…"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
