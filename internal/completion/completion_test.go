package completion

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/backend"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/response"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

type fakeAsker struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeAsker) Ask(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeEditor struct {
	line     string
	replaced []string
	readErr  error
}

func (f *fakeEditor) CurrentLine(context.Context) (string, error) { return f.line, f.readErr }

func (f *fakeEditor) ReplaceLine(_ context.Context, line string) error {
	f.replaced = append(f.replaced, line)
	return nil
}

func newService(t *testing.T, asker backend.Asker) (*Service, *store.CompletionLog) {
	t.Helper()
	history := store.OpenCompletionLog(filepath.Join(t.TempDir(), "completions.json"), zap.NewNop())
	return New(asker, history, time.Second, zap.NewNop()), history
}

func TestComplete(t *testing.T) {
	asker := &fakeAsker{reply: "Here is the command:\nls -l /tmp\n"}
	svc, history := newService(t, asker)

	res, err := svc.Complete(context.Background(), "  ls -l ")
	require.NoError(t, err)
	assert.Equal(t, Result{Partial: "ls -l", Command: "ls -l /tmp", Source: SourceBackend}, res)

	require.Len(t, asker.prompts, 1)
	assert.Contains(t, asker.prompts[0], "Input: ls -l")

	entries := history.Recent(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "ls", entries[0].Prefix)
	assert.Equal(t, "ls -l /tmp", entries[0].Completed)
	assert.Equal(t, 1, history.Stats().MostCommonPrefixes[0].Count)
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name    string
		partial string
		asker   *fakeAsker
		want    error
	}{
		{"empty input", "   ", &fakeAsker{reply: "ls"}, ErrEmptyInput},
		{"backend unavailable", "ls", &fakeAsker{err: backend.ErrUnavailable}, backend.ErrUnavailable},
		{"backend timeout", "ls", &fakeAsker{err: backend.ErrTimeout}, backend.ErrTimeout},
		{"blank reply", "ls", &fakeAsker{reply: "  \n "}, response.ErrNoCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, history := newService(t, tt.asker)
			_, err := svc.Complete(context.Background(), tt.partial)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
			assert.Equal(t, 0, history.Len(), "failures must not be recorded")
		})
	}
}

func TestCompletePreferHistory(t *testing.T) {
	asker := &fakeAsker{reply: "git status -sb"}
	svc, history := newService(t, asker)
	_, err := history.Record("git st", "git status")
	require.NoError(t, err)

	svc.PreferHistory = true
	res, err := svc.Complete(context.Background(), "git st")
	require.NoError(t, err)
	assert.Equal(t, "git status", res.Command)
	assert.Equal(t, SourceHistory, res.Source)
	assert.Empty(t, asker.prompts, "backend must not be asked")

	res, err = svc.Complete(context.Background(), "git lg")
	require.NoError(t, err)
	assert.Equal(t, SourceBackend, res.Source)
}

func TestCompleteRecordFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	history := store.OpenCompletionLog(filepath.Join(blocker, "completions.json"), zap.NewNop())
	svc := New(&fakeAsker{reply: "df -h"}, history, time.Second, zap.NewNop())

	res, err := svc.Complete(context.Background(), "disk usage")
	assert.True(t, errors.Is(err, ErrNotRecorded), "got %v", err)
	assert.Equal(t, "df -h", res.Command, "completion is still returned")
}

func TestSuggest(t *testing.T) {
	svc, history := newService(t, &fakeAsker{})
	_, ok := svc.Suggest("tar")
	assert.False(t, ok)

	_, err := history.Record("tar", "tar -xzf a.tgz")
	require.NoError(t, err)
	got, ok := svc.Suggest(" tar ")
	require.True(t, ok)
	assert.Equal(t, "tar -xzf a.tgz", got)

	_, ok = svc.Suggest("")
	assert.False(t, ok)
}

func TestCompleteTerminal(t *testing.T) {
	t.Run("replaces and records", func(t *testing.T) {
		svc, history := newService(t, &fakeAsker{reply: "pnpm run dev"})
		ed := &fakeEditor{line: "pnpm run"}

		res, err := svc.CompleteTerminal(context.Background(), ed)
		require.NoError(t, err)
		assert.Equal(t, "pnpm run dev", res.Command)
		assert.Equal(t, []string{"pnpm run dev"}, ed.replaced)
		assert.Equal(t, 1, history.Len())
	})

	t.Run("unchanged line is left alone", func(t *testing.T) {
		svc, history := newService(t, &fakeAsker{reply: "git status"})
		ed := &fakeEditor{line: "git status"}

		_, err := svc.CompleteTerminal(context.Background(), ed)
		assert.True(t, errors.Is(err, ErrUnchanged))
		assert.Empty(t, ed.replaced)
		assert.Equal(t, 0, history.Len())
	})

	t.Run("empty line", func(t *testing.T) {
		asker := &fakeAsker{reply: "ls"}
		svc, _ := newService(t, asker)
		_, err := svc.CompleteTerminal(context.Background(), &fakeEditor{line: ""})
		assert.True(t, errors.Is(err, ErrEmptyInput))
		assert.Empty(t, asker.prompts)
	})

	t.Run("read failure", func(t *testing.T) {
		svc, _ := newService(t, &fakeAsker{reply: "ls"})
		_, err := svc.CompleteTerminal(context.Background(), &fakeEditor{readErr: errors.New("no tmux")})
		assert.Error(t, err)
	})
}

func TestCopyToClipboard(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	assert.True(t, errors.Is(CopyToClipboard(context.Background(), "ls"), ErrNoClipboard))

	out := filepath.Join(t.TempDir(), "clip")
	script := filepath.Join(t.TempDir(), "pbcopy")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat > "+out+"\n"), 0755))
	lookPath = func(name string) (string, error) {
		if name == "pbcopy" {
			return script, nil
		}
		return "", exec.ErrNotFound
	}
	require.NoError(t, CopyToClipboard(context.Background(), "git status"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "git status", strings.TrimSpace(string(data)))
}
