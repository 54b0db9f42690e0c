package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func openLog(t *testing.T) (*CompletionLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "completions.json")
	c := OpenCompletionLog(path, zap.NewNop())
	c.Now = fixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return c, path
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ls -l", "ls"},
		{"  git   status ", "git"},
		{"", ""},
		{"   ", ""},
		{"docker", "docker"},
	}
	for _, tt := range tests {
		if got := PrefixOf(tt.in); got != tt.want {
			t.Errorf("PrefixOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompletionLogRecord(t *testing.T) {
	c, path := openLog(t)

	entry, err := c.Record("ls -l", "ls -l /tmp")
	require.NoError(t, err)
	assert.Equal(t, "ls", entry.Prefix)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, Ranking{{Value: "ls", Count: 1}}, stats.MostCommonPrefixes)
	assert.Equal(t, Ranking{{Value: "ls -l /tmp", Count: 1}}, stats.MostCommonCompletions)
	assert.Equal(t, Ranking{{Value: "ls -l", Count: 1}}, stats.MostForgottenCommands)

	reopened := OpenCompletionLog(path, zap.NewNop())
	require.Equal(t, 1, reopened.Len())
	if diff := cmp.Diff(c.Recent(10), reopened.Recent(10), cmp.Comparer(func(a, b Timestamp) bool {
		return a.Equal(b.Time)
	})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionStatsMatchEntries(t *testing.T) {
	c, _ := openLog(t)
	pairs := [][2]string{
		{"git st", "git status"},
		{"git co", "git checkout main"},
		{"ls", "ls -la"},
		{"git st", "git status"},
		{"docker ps", "docker ps -a"},
	}
	for _, p := range pairs {
		_, err := c.Record(p[0], p[1])
		require.NoError(t, err)
	}

	got := c.Stats()
	want := ComputeCompletionStats(c.Recent(c.Len()), got.LastUpdated.Time)
	assert.Equal(t, want, got)
	assert.Equal(t, 5, got.TotalCompletions)
	assert.Equal(t, Count{Value: "git", Count: 3}, got.MostCommonPrefixes[0])
	assert.Equal(t, Count{Value: "git status", Count: 2}, got.MostCommonCompletions[0])
}

func TestCompletionLogRecent(t *testing.T) {
	c, _ := openLog(t)
	assert.Empty(t, c.Recent(5), "empty log")

	for _, s := range []string{"a", "b", "c"} {
		_, err := c.Record(s, s+" x")
		require.NoError(t, err)
	}

	got := c.Recent(2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Original)
	assert.Equal(t, "c", got[1].Original)
	assert.Len(t, c.Recent(10), 3)
	assert.Empty(t, c.Recent(0))

	got[0].Original = "mutated"
	assert.Equal(t, "b", c.Recent(2)[0].Original, "Recent must return a copy")
}

func TestCompletionLogSuggest(t *testing.T) {
	c, _ := openLog(t)

	_, ok := c.Suggest("git st")
	assert.False(t, ok, "no history")

	for _, p := range [][2]string{
		{"git st", "git stash"},
		{"git st", "git status"},
		{"git st", "git status"},
		{"git s", "git show"},
	} {
		_, err := c.Record(p[0], p[1])
		require.NoError(t, err)
	}

	got, ok := c.Suggest("git st")
	require.True(t, ok)
	assert.Equal(t, "git status", got)

	got, ok = c.Suggest("git s")
	require.True(t, ok)
	assert.Equal(t, "git show", got)
}

func TestCompletionLogSuggestTieGoesToFirstSeen(t *testing.T) {
	c, _ := openLog(t)
	for _, comp := range []string{"tar -xzf a.tgz", "tar -czf a.tgz ."} {
		_, err := c.Record("tar", comp)
		require.NoError(t, err)
	}
	got, ok := c.Suggest("tar")
	require.True(t, ok)
	assert.Equal(t, "tar -xzf a.tgz", got)
}

func TestCompletionLogMissingFile(t *testing.T) {
	c := OpenCompletionLog(filepath.Join(t.TempDir(), "nope", "completions.json"), zap.NewNop())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Stats().TotalCompletions)
}

func TestCompletionLogCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "completions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := OpenCompletionLog(path, zap.NewNop())
	assert.Equal(t, 0, c.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var aside bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "completions.json.corrupt-") {
			aside = true
		}
	}
	assert.True(t, aside, "corrupt file should be moved aside")

	_, err = c.Record("ls", "ls -la")
	require.NoError(t, err)
}

func TestCompletionLogLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completions.json")
	legacy := `{
  "completions": [
    {
      "timestamp": "2024-05-01T10:11:12.345678",
      "original": "git st",
      "completed": "git status",
      "prefix": "git"
    }
  ],
  "stats": {
    "total_completions": 99,
    "most_common_prefixes": {"bogus": 4},
    "most_forgotten_commands": {},
    "most_common_completions": {},
    "last_updated": "2024-05-01T10:11:12"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	c := OpenCompletionLog(path, zap.NewNop())
	require.Equal(t, 1, c.Len())

	e := c.Recent(1)[0]
	assert.Equal(t, 2024, e.Timestamp.Year())
	assert.Equal(t, 345678000, e.Timestamp.Nanosecond())

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalCompletions, "stats are recomputed, not trusted")
	assert.Equal(t, Ranking{{Value: "git", Count: 1}}, stats.MostCommonPrefixes)
}

func TestCompletionLogFileFormat(t *testing.T) {
	c, path := openLog(t)
	_, err := c.Record("ls", "ls -la")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"completions\": [", "two-space indentation")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "completions")
	assert.Contains(t, raw, "stats")
}

func TestCompletionLogSaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	// The parent of the backing file is a regular file, so every save fails.
	c := OpenCompletionLog(filepath.Join(blocker, "completions.json"), zap.NewNop())
	_, err := c.Record("ls", "ls -la")
	require.Error(t, err)

	assert.Equal(t, 1, c.Len(), "in-memory append stands")
	assert.Equal(t, 1, c.Stats().TotalCompletions)
}
