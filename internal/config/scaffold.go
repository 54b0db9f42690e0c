package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitFile writes the default config.toml template to path, creating parent
// directories as needed. If path is empty, Path() is used. An existing file
// is never overwritten.
func InitFile(path string) (string, error) {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}

const configTemplate = `# config.toml: gch (AI command helper) configuration

[backend]
kind = "cli"                     # cli | genai | ollama
command = "gemini"               # AI CLI invoked as: <command> <prompt_flag> <prompt>
prompt_flag = "-p"
model = ""                       # passed as --model when set (cli backend)
completion_timeout_seconds = 30
question_timeout_seconds = 60
probe_timeout_seconds = 5        # 0 = skip the startup availability probe

[genai]
api_key_env = "GEMINI_API_KEY"
model = "gemini-2.5-flash"

[ollama]
url = "http://localhost:11434"
model = "llama3.2"

[storage]
completions_file = ""            # empty = $XDG_DATA_HOME/gch/completions.json
questions_file = ""              # empty = $XDG_DATA_HOME/gch/questions.json
sessions_file = ""               # empty = $XDG_DATA_HOME/gch/sessions.jsonl

[completion]
prefer_history = false           # answer from past completions before asking the backend
copy_command = true              # copy -g results to the clipboard when a clipboard tool exists

[quiz]
session_size = 10
small_bank_threshold = 5         # banks this small are quizzed in full

[terminal]
kind = "tmux"                    # tmux | none
target = ""                      # tmux target pane; empty = active pane
prompt_pattern = '^.*?[$#%>❯] '  # stripped from the captured line

[listener]
socket = ""                      # empty = $XDG_RUNTIME_DIR/gch.sock

[logging]
level = "warn"
file = ""

[tui]
accent_color = "#7D56F4"

[notifications]
url = ""                         # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_quiz_complete = true
on_question_created = false
`
