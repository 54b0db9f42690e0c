package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionRecord summarises one finished quiz session.
type SessionRecord struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Correct    int       `json:"correct" yaml:"correct"`
	Total      int       `json:"total" yaml:"total"`
}

// Percent returns the session score as a percentage.
func (r SessionRecord) Percent() float64 {
	return Percent(r.Correct, r.Total)
}

// SessionLog is an append-only JSONL file of quiz sessions. Each line is one
// JSON-serialized SessionRecord; the file is synced after every Append.
type SessionLog struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// NewSessionLog returns a SessionLog writing to path. Nothing is opened
// until the first Append.
func NewSessionLog(path string, logger *zap.Logger) *SessionLog {
	return &SessionLog{path: path, log: logger}
}

// Append serializes r as a JSON line, writes it and syncs.
func (s *SessionLog) Append(r SessionRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("store: mkdir %q: %w", filepath.Dir(s.path), err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("store: open %q: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("store: sync: %w", err)
	}
	return nil
}

// Recent returns up to n most recent sessions, oldest first. Malformed lines
// are skipped. A missing file yields no sessions.
func (s *SessionLog) Recent(n int) ([]SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: open %q: %w", s.path, err)
	}
	defer f.Close()

	var records []SessionRecord
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r SessionRecord
		if err := json.Unmarshal(line, &r); err != nil {
			s.log.Warn("skipping malformed session line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("store: read %q: %w", s.path, err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
