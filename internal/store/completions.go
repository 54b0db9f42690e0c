package store

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CompletionEntry records one successful completion. Entries are never
// mutated or deleted once appended.
type CompletionEntry struct {
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`
	Original  string    `json:"original" yaml:"original"`
	Completed string    `json:"completed" yaml:"completed"`
	Prefix    string    `json:"prefix" yaml:"prefix"`
}

// NewCompletionEntry builds an entry, deriving Prefix from original.
func NewCompletionEntry(at time.Time, original, completed string) CompletionEntry {
	return CompletionEntry{
		Timestamp: At(at),
		Original:  original,
		Completed: completed,
		Prefix:    PrefixOf(original),
	}
}

// PrefixOf returns the first whitespace-delimited token of cmd, or "".
func PrefixOf(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CompletionStats summarises the completion history.
type CompletionStats struct {
	TotalCompletions      int       `json:"total_completions" yaml:"total_completions"`
	MostCommonPrefixes    Ranking   `json:"most_common_prefixes" yaml:"most_common_prefixes"`
	MostForgottenCommands Ranking   `json:"most_forgotten_commands" yaml:"most_forgotten_commands"`
	MostCommonCompletions Ranking   `json:"most_common_completions" yaml:"most_common_completions"`
	LastUpdated           Timestamp `json:"last_updated" yaml:"last_updated"`
}

// ComputeCompletionStats derives stats from entries. Apart from LastUpdated
// the result depends on entries alone.
func ComputeCompletionStats(entries []CompletionEntry, updated time.Time) CompletionStats {
	prefixes := make([]string, len(entries))
	originals := make([]string, len(entries))
	completed := make([]string, len(entries))
	for i, e := range entries {
		prefixes[i] = e.Prefix
		originals[i] = e.Original
		completed[i] = e.Completed
	}
	return CompletionStats{
		TotalCompletions:      len(entries),
		MostCommonPrefixes:    Rank(prefixes, TopLimit),
		MostForgottenCommands: Rank(originals, TopLimit),
		MostCommonCompletions: Rank(completed, TopLimit),
		LastUpdated:           At(updated),
	}
}

type completionDoc struct {
	Completions []CompletionEntry `json:"completions"`
	Stats       CompletionStats   `json:"stats"`
}

// CompletionLog is the completion history backed by one JSON document. It is
// the only writer of that file.
type CompletionLog struct {
	mu   sync.Mutex
	file Document[completionDoc]
	doc  completionDoc
	log  *zap.Logger

	// Now is the clock used for new entries and stats; replaced in tests.
	Now func() time.Time
}

// OpenCompletionLog loads the history at path. A missing or unreadable file
// starts an empty history; the problem is logged, never returned.
func OpenCompletionLog(path string, logger *zap.Logger) *CompletionLog {
	c := &CompletionLog{
		file: Document[completionDoc]{Path: path},
		log:  logger,
		Now:  time.Now,
	}
	doc, err := c.file.Load()
	if err != nil {
		logger.Warn("completion history unreadable, starting empty", zap.String("path", path), zap.Error(err))
		doc = completionDoc{}
	}
	c.doc.Completions = doc.Completions
	c.doc.Stats = ComputeCompletionStats(doc.Completions, doc.Stats.LastUpdated.Time)
	return c
}

// Path returns the backing file location.
func (c *CompletionLog) Path() string {
	return c.file.Path
}

// Record appends a new entry for original → completed stamped with Now.
func (c *CompletionLog) Record(original, completed string) (CompletionEntry, error) {
	entry := NewCompletionEntry(c.Now(), original, completed)
	return entry, c.Append(entry)
}

// Append adds entry, recomputes stats and persists the whole history. A
// write failure is returned but the in-memory append stands, so memory and
// disk may differ until the next successful write.
func (c *CompletionLog) Append(entry CompletionEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doc.Completions = append(c.doc.Completions, entry)
	c.doc.Stats = ComputeCompletionStats(c.doc.Completions, c.Now())

	if err := c.file.Save(c.doc); err != nil {
		c.log.Error("saving completion history", zap.String("path", c.file.Path), zap.Error(err))
		return err
	}
	c.log.Info("logged completion", zap.String("original", entry.Original), zap.String("completed", entry.Completed))
	return nil
}

// Stats returns the current statistics.
func (c *CompletionLog) Stats() CompletionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Stats
}

// Len returns the number of entries.
func (c *CompletionLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.doc.Completions)
}

// Recent returns up to n most recent entries in insertion order.
func (c *CompletionLog) Recent(n int) []CompletionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || len(c.doc.Completions) == 0 {
		return nil
	}
	start := len(c.doc.Completions) - n
	if start < 0 {
		start = 0
	}
	out := make([]CompletionEntry, len(c.doc.Completions)-start)
	copy(out, c.doc.Completions[start:])
	return out
}

// Suggest returns the most frequent past completion for exactly partial.
// Ties go to the completion seen first.
func (c *CompletionLog) Suggest(partial string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matches []string
	for _, e := range c.doc.Completions {
		if e.Original == partial {
			matches = append(matches, e.Completed)
		}
	}
	top := Rank(matches, 1)
	if len(top) == 0 {
		return "", false
	}
	return top[0].Value, true
}
