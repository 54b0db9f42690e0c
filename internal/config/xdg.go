package config

import (
	"os"
	"path/filepath"
)

const appDir = "gch"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// XDGRuntimeDir returns the XDG runtime dir, falling back to the OS temp dir.
func XDGRuntimeDir() string {
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return v
	}
	return os.TempDir()
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultCompletionsPath returns the default completion history file.
func DefaultCompletionsPath() string {
	return filepath.Join(XDGDataHome(), appDir, "completions.json")
}

// DefaultQuestionsPath returns the default quiz question file.
func DefaultQuestionsPath() string {
	return filepath.Join(XDGDataHome(), appDir, "questions.json")
}

// DefaultSessionsPath returns the default quiz session history file.
func DefaultSessionsPath() string {
	return filepath.Join(XDGDataHome(), appDir, "sessions.jsonl")
}

// DefaultSocketPath returns the listener socket path.
func DefaultSocketPath() string {
	return filepath.Join(XDGRuntimeDir(), appDir+".sock")
}
