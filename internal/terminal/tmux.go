package terminal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Tmux edits the command line of a tmux pane through capture-pane and
// send-keys.
type Tmux struct {
	// Target is the tmux target pane; empty means the current pane.
	Target string
	// Prompt matches the shell prompt at the start of the cursor line. The
	// first match is removed from the captured line.
	Prompt *regexp.Regexp

	run func(ctx context.Context, args ...string) ([]byte, error)
}

// NewTmux creates a Tmux editor for target.
func NewTmux(target string, prompt *regexp.Regexp) *Tmux {
	return &Tmux{Target: target, Prompt: prompt, run: runTmux}
}

func runTmux(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("terminal: tmux %s: %v: %s", args[0], err, detail)
		}
		return nil, fmt.Errorf("terminal: tmux %s: %v", args[0], err)
	}
	return out, nil
}

// targetArgs places -t right after the subcommand; tmux stops reading flags
// at the first key argument.
func (t *Tmux) targetArgs(sub string, args ...string) []string {
	out := []string{sub}
	if t.Target != "" {
		out = append(out, "-t", t.Target)
	}
	return append(out, args...)
}

// CurrentLine returns the last non-empty line of the pane with the prompt
// stripped.
func (t *Tmux) CurrentLine(ctx context.Context) (string, error) {
	out, err := t.run(ctx, t.targetArgs("capture-pane", "-p")...)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], " \t")
		if line == "" {
			continue
		}
		if t.Prompt != nil {
			// capture-pane drops trailing blanks, so a bare prompt has lost
			// the space the pattern expects.
			line += " "
			if loc := t.Prompt.FindStringIndex(line); loc != nil {
				line = line[:loc[0]] + line[loc[1]:]
			}
		}
		return strings.TrimSpace(line), nil
	}
	return "", nil
}

// ReplaceLine clears the line under the cursor and types line literally.
func (t *Tmux) ReplaceLine(ctx context.Context, line string) error {
	if _, err := t.run(ctx, t.targetArgs("send-keys", "C-e", "C-u")...); err != nil {
		return err
	}
	_, err := t.run(ctx, append(t.targetArgs("send-keys", "-l"), "--", line)...)
	return err
}
