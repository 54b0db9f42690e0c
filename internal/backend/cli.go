package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CLI asks an external command-line AI client, by default `gemini -p <prompt>`.
// The prompt is passed as a single argument; no shell is involved.
type CLI struct {
	// Command is the client binary. Defaults to "gemini".
	Command string
	// PromptFlag precedes the prompt argument. Defaults to "-p".
	PromptFlag string
	// Model, when set, is passed as --model.
	Model string
}

func (c *CLI) command() string {
	if c.Command == "" {
		return "gemini"
	}
	return c.Command
}

// buildArgs constructs the client arguments for one prompt.
func (c *CLI) buildArgs(prompt string) []string {
	flag := c.PromptFlag
	if flag == "" {
		flag = "-p"
	}
	args := []string{flag, prompt}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}
	return args
}

// Ask runs the client once and returns its stdout. A non-zero exit is an
// error carrying the client's stderr.
func (c *CLI) Ask(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command(), c.buildArgs(prompt)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", c.classify(ctx, err, stderr.String())
	}
	return stdout.String(), nil
}

// Probe runs `<command> --help` and reports whether it exits cleanly.
func (c *CLI) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.command(), "--help")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		err = c.classify(ctx, err, stderr.String())
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *CLI) classify(ctx context.Context, err error, stderr string) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, c.command())
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, c.command())
	}
	if detail := strings.TrimSpace(stderr); detail != "" {
		return fmt.Errorf("backend: %s exited: %v: %s", c.command(), err, detail)
	}
	return fmt.Errorf("backend: %s exited: %v", c.command(), err)
}
