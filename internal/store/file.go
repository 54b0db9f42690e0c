package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Document is a JSON document stored at Path. The zero value of T stands in
// for a missing file.
type Document[T any] struct {
	Path string
}

// Load reads and decodes the document. A missing file is not an error and
// yields the zero T. A file that cannot be decoded is moved aside to
// "<path>.corrupt-<unix>" so the next Save does not destroy it; the decode
// error is returned together with the zero T.
func (d Document[T]) Load() (T, error) {
	var v T
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return v, fmt.Errorf("store: read %s: %w", d.Path, err)
	}

	if jsonErr := json.Unmarshal(data, &v); jsonErr != nil {
		var zero T
		aside := fmt.Sprintf("%s.corrupt-%d", d.Path, time.Now().Unix())
		if renameErr := os.Rename(d.Path, aside); renameErr != nil {
			return zero, fmt.Errorf("store: parse %s: %w (could not move aside: %v)", d.Path, jsonErr, renameErr)
		}
		return zero, fmt.Errorf("store: parse %s (moved to %s): %w", d.Path, aside, jsonErr)
	}
	return v, nil
}

// Save writes v as indented JSON. The parent directory is created if needed.
// Uses a write-then-rename pattern so readers never observe a partially
// written file.
func (d Document[T]) Save(v T) error {
	dir := filepath.Dir(d.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("store: create dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write: %w", writeErr)
	}
	if syncErr := tmp.Sync(); syncErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: sync: %w", syncErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close: %w", closeErr)
	}
	if renameErr := os.Rename(tmp.Name(), d.Path); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: finalize %s: %w", d.Path, renameErr)
	}
	return nil
}
