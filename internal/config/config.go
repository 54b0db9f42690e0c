// Package config parses the gch TOML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// DefaultAccentColor is the default TUI accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "GCH_CONFIG"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Backend kinds.
const (
	BackendCLI    = "cli"
	BackendGenAI  = "genai"
	BackendOllama = "ollama"
)

// Terminal kinds.
const (
	TerminalTmux = "tmux"
	TerminalNone = "none"
)

// Config is the top-level config.toml configuration.
type Config struct {
	Backend       BackendConfig       `toml:"backend"`
	GenAI         GenAIConfig         `toml:"genai"`
	Ollama        OllamaConfig        `toml:"ollama"`
	Storage       StorageConfig       `toml:"storage"`
	Completion    CompletionConfig    `toml:"completion"`
	Quiz          QuizConfig          `toml:"quiz"`
	Terminal      TerminalConfig      `toml:"terminal"`
	Listener      ListenerConfig      `toml:"listener"`
	Logging       LoggingConfig       `toml:"logging"`
	TUI           TUIConfig           `toml:"tui"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// BackendConfig selects and tunes the AI backend.
type BackendConfig struct {
	Kind                     string `toml:"kind"`
	Command                  string `toml:"command"`
	PromptFlag               string `toml:"prompt_flag"`
	Model                    string `toml:"model"`
	CompletionTimeoutSeconds int    `toml:"completion_timeout_seconds"`
	QuestionTimeoutSeconds   int    `toml:"question_timeout_seconds"`
	ProbeTimeoutSeconds      int    `toml:"probe_timeout_seconds"`
}

// CompletionTimeout is the bounded wait for an interactive completion.
func (b BackendConfig) CompletionTimeout() time.Duration {
	return time.Duration(b.CompletionTimeoutSeconds) * time.Second
}

// QuestionTimeout is the bounded wait for quiz question generation.
func (b BackendConfig) QuestionTimeout() time.Duration {
	return time.Duration(b.QuestionTimeoutSeconds) * time.Second
}

// ProbeTimeout bounds the startup availability check.
func (b BackendConfig) ProbeTimeout() time.Duration {
	return time.Duration(b.ProbeTimeoutSeconds) * time.Second
}

// GenAIConfig configures the Google GenAI backend.
type GenAIConfig struct {
	APIKeyEnv string `toml:"api_key_env"`
	Model     string `toml:"model"`
}

// OllamaConfig configures the Ollama HTTP backend.
type OllamaConfig struct {
	URL   string `toml:"url"`
	Model string `toml:"model"`
}

// StorageConfig locates the backing files. Empty paths use the XDG data home.
type StorageConfig struct {
	CompletionsFile string `toml:"completions_file"`
	QuestionsFile   string `toml:"questions_file"`
	SessionsFile    string `toml:"sessions_file"`
}

// CompletionConfig controls the completion flow.
type CompletionConfig struct {
	PreferHistory bool `toml:"prefer_history"`
	CopyCommand   bool `toml:"copy_command"`
}

// QuizConfig controls quiz session sizing.
type QuizConfig struct {
	SessionSize        int `toml:"session_size"`
	SmallBankThreshold int `toml:"small_bank_threshold"`
}

// TerminalConfig selects the terminal automation used by the listener.
type TerminalConfig struct {
	Kind          string `toml:"kind"`
	Target        string `toml:"target"`
	PromptPattern string `toml:"prompt_pattern"`
}

// ListenerConfig controls the background trigger listener.
type ListenerConfig struct {
	Socket string `toml:"socket"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL               string `toml:"url"`
	OnQuizComplete    bool   `toml:"on_quiz_complete"`
	OnQuestionCreated bool   `toml:"on_question_created"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Kind {
	case BackendCLI:
		if c.Backend.Command == "" {
			errs = append(errs, fmt.Errorf("backend.command must not be empty when backend.kind is %q", BackendCLI))
		}
	case BackendGenAI:
		if c.GenAI.Model == "" {
			errs = append(errs, fmt.Errorf("genai.model must not be empty"))
		}
	case BackendOllama:
		if _, err := parseHTTPURL(c.Ollama.URL); err != nil {
			errs = append(errs, fmt.Errorf("ollama.url must be a valid http or https URL"))
		}
		if c.Ollama.Model == "" {
			errs = append(errs, fmt.Errorf("ollama.model must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.kind must be one of %q, %q, %q", BackendCLI, BackendGenAI, BackendOllama))
	}

	if c.Backend.CompletionTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("backend.completion_timeout_seconds must be > 0"))
	}
	if c.Backend.QuestionTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("backend.question_timeout_seconds must be > 0"))
	}
	if c.Backend.ProbeTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("backend.probe_timeout_seconds must be >= 0 (0 = skip probe)"))
	}

	if c.Quiz.SessionSize <= 0 {
		errs = append(errs, fmt.Errorf("quiz.session_size must be > 0"))
	}
	if c.Quiz.SmallBankThreshold < 0 {
		errs = append(errs, fmt.Errorf("quiz.small_bank_threshold must be >= 0"))
	}

	switch c.Terminal.Kind {
	case TerminalTmux, TerminalNone:
	default:
		errs = append(errs, fmt.Errorf("terminal.kind must be %q or %q", TerminalTmux, TerminalNone))
	}
	if c.Terminal.PromptPattern != "" {
		if _, err := regexp.Compile(c.Terminal.PromptPattern); err != nil {
			errs = append(errs, fmt.Errorf("terminal.prompt_pattern: %w", err))
		}
	}

	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("logging.level: %w", err))
		}
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#7D56F4\")"))
	}

	if c.Notifications.URL != "" {
		if _, err := parseHTTPURL(c.Notifications.URL); err != nil {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	return errors.Join(errs...)
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u, nil
}

// Defaults returns a Config with the stock settings.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			Kind:                     BackendCLI,
			Command:                  "gemini",
			PromptFlag:               "-p",
			CompletionTimeoutSeconds: 30,
			QuestionTimeoutSeconds:   60,
			ProbeTimeoutSeconds:      5,
		},
		GenAI: GenAIConfig{
			APIKeyEnv: "GEMINI_API_KEY",
			Model:     "gemini-2.5-flash",
		},
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "llama3.2",
		},
		Completion: CompletionConfig{
			PreferHistory: false,
			CopyCommand:   true,
		},
		Quiz: QuizConfig{
			SessionSize:        10,
			SmallBankThreshold: 5,
		},
		Terminal: TerminalConfig{
			Kind:          TerminalTmux,
			PromptPattern: `^.*?[$#%>❯] `,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
		},
		Notifications: NotificationsConfig{
			OnQuizComplete:    true,
			OnQuestionCreated: false,
		},
	}
}

// Path returns the config file location: $GCH_CONFIG if set, otherwise
// config.toml under the XDG config home.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath()
}

// Load reads the config from path. If path is empty, Path() is used. A
// missing file yields the defaults. Returns an error if the file contains
// unknown keys (likely typos) or fails validation.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Defaults()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg.resolvePaths()
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}

	cfg.resolvePaths()
	return &cfg, nil
}

// resolvePaths fills empty storage and socket paths with XDG defaults.
func (c *Config) resolvePaths() {
	if c.Storage.CompletionsFile == "" {
		c.Storage.CompletionsFile = DefaultCompletionsPath()
	}
	if c.Storage.QuestionsFile == "" {
		c.Storage.QuestionsFile = DefaultQuestionsPath()
	}
	if c.Storage.SessionsFile == "" {
		c.Storage.SessionsFile = DefaultSessionsPath()
	}
	if c.Listener.Socket == "" {
		c.Listener.Socket = DefaultSocketPath()
	}
}
