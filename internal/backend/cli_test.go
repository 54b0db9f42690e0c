package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// init runs as a fake AI client when _FAKE_GEMINI=1 is set. The guard lives in
// init() so client flags such as -p never reach the test runner's flag parser.
func init() {
	if os.Getenv("_FAKE_GEMINI") != "1" {
		return
	}
	if os.Getenv("_FAKE_GEMINI_ECHO_ARGS") == "1" {
		fmt.Fprint(os.Stdout, strings.Join(os.Args[1:], "\n"))
	}
	if s := os.Getenv("_FAKE_GEMINI_STDOUT"); s != "" {
		fmt.Fprint(os.Stdout, s)
	}
	if s := os.Getenv("_FAKE_GEMINI_STDERR"); s != "" {
		fmt.Fprint(os.Stderr, s)
	}
	if os.Getenv("_FAKE_GEMINI_SLEEP") == "1" {
		time.Sleep(time.Minute)
	}
	code := 0
	if s := os.Getenv("_FAKE_GEMINI_EXIT"); s != "" {
		_, _ = fmt.Sscan(s, &code)
	}
	os.Exit(code)
}

func fakeCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("_FAKE_GEMINI", "1")
	return &CLI{Command: os.Args[0]}
}

func TestCLIBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		cli  CLI
		want []string
	}{
		{"defaults", CLI{}, []string{"-p", "list files"}},
		{"custom flag", CLI{PromptFlag: "--prompt"}, []string{"--prompt", "list files"}},
		{"with model", CLI{Model: "gemini-2.5-pro"}, []string{"-p", "list files", "--model", "gemini-2.5-pro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cli.buildArgs("list files")
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIAsk(t *testing.T) {
	t.Run("returns stdout", func(t *testing.T) {
		c := fakeCLI(t)
		t.Setenv("_FAKE_GEMINI_STDOUT", "ls -la\n")

		got, err := c.Ask(context.Background(), "list files")
		if err != nil {
			t.Fatal(err)
		}
		if got != "ls -la\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("prompt is a single argument", func(t *testing.T) {
		c := fakeCLI(t)
		t.Setenv("_FAKE_GEMINI_ECHO_ARGS", "1")

		got, err := c.Ask(context.Background(), "find files; rm -rf /")
		if err != nil {
			t.Fatal(err)
		}
		if got != "-p\nfind files; rm -rf /" {
			t.Errorf("args: got %q", got)
		}
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		c := fakeCLI(t)
		t.Setenv("_FAKE_GEMINI_STDERR", "quota exceeded")
		t.Setenv("_FAKE_GEMINI_EXIT", "3")

		_, err := c.Ask(context.Background(), "x")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "quota exceeded") {
			t.Errorf("error should include stderr: %v", err)
		}
	})

	t.Run("missing binary is unavailable", func(t *testing.T) {
		c := &CLI{Command: "gch-no-such-binary-xyz"}
		_, err := c.Ask(context.Background(), "x")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("got %v, want ErrUnavailable", err)
		}
	})

	t.Run("deadline is a timeout", func(t *testing.T) {
		c := fakeCLI(t)
		t.Setenv("_FAKE_GEMINI_SLEEP", "1")

		start := time.Now()
		_, err := AskWithin(context.Background(), c, "x", 200*time.Millisecond)
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("got %v, want ErrTimeout", err)
		}
		if time.Since(start) > 10*time.Second {
			t.Error("timeout did not bound the call")
		}
	})
}

func TestCLIProbe(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := fakeCLI(t)
		if err := Probe(context.Background(), c, 5*time.Second); err != nil {
			t.Errorf("probe: %v", err)
		}
	})

	t.Run("failing help", func(t *testing.T) {
		c := fakeCLI(t)
		t.Setenv("_FAKE_GEMINI_EXIT", "1")
		if err := Probe(context.Background(), c, 5*time.Second); !errors.Is(err, ErrUnavailable) {
			t.Errorf("got %v, want ErrUnavailable", err)
		}
	})

	t.Run("zero timeout skips", func(t *testing.T) {
		c := &CLI{Command: "gch-no-such-binary-xyz"}
		if err := Probe(context.Background(), c, 0); err != nil {
			t.Errorf("got %v, want nil", err)
		}
	})
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{Err: errors.New("no key")}.Ask(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v", err)
	}
	if !strings.Contains(err.Error(), "no key") {
		t.Errorf("cause missing: %v", err)
	}
}

func TestPrompts(t *testing.T) {
	p := CompletionPrompt("pnpm run")
	if !strings.Contains(p, "Input: pnpm run") || !strings.HasSuffix(p, "Command:") {
		t.Errorf("completion prompt malformed:\n%s", p)
	}

	q := QuestionPrompt("ls -la")
	for _, want := range []string{"this shell command: ls -la", "(exactly: ls -la)", `"wrong_options"`, "Command to create question for: ls -la"} {
		if !strings.Contains(q, want) {
			t.Errorf("question prompt missing %q", want)
		}
	}
}
