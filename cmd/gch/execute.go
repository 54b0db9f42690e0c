package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/completion"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/learning"
)

// Flag-invocation markers.
const (
	flagComplete = "-g"
	flagLearn    = "-l"
)

type invocationMode int

const (
	modeComplete invocationMode = iota + 1
	modeLearn
)

// flagInvocation is a parsed `gch <words> -g|-l` call.
type flagInvocation struct {
	mode  invocationMode
	input string
	opts  globalOptions
	err   error
}

// parseFlagInvocation recognises the flag-style form. It applies when -g or
// -l appears in args and the words do not start with a subcommand. Leading
// --debug and --config flags are taken as global options. Only the last -g
// or -l is the marker; earlier ones belong to the command, so `ls -l -g`
// completes "ls -l".
func parseFlagInvocation(args []string) (flagInvocation, bool) {
	opts, words, err := splitGlobalFlags(args)

	marker := -1
	for i, w := range words {
		if w == flagComplete || w == flagLearn {
			marker = i
		}
	}
	if marker < 0 {
		return flagInvocation{}, false
	}
	if len(words) > 0 && isSubcommand(words[0]) {
		return flagInvocation{}, false
	}

	inv := flagInvocation{opts: opts, err: err, mode: modeLearn}
	if words[marker] == flagComplete {
		inv.mode = modeComplete
	}
	rest := slices.Delete(slices.Clone(words), marker, marker+1)
	inv.input = strings.Join(rest, " ")
	return inv, true
}

// splitGlobalFlags removes the persistent root flags from the front of args.
func splitGlobalFlags(args []string) (globalOptions, []string, error) {
	var opts globalOptions
	for len(args) > 0 {
		switch a := args[0]; {
		case a == "--debug":
			opts.debug = true
			args = args[1:]
		case a == "--config":
			if len(args) < 2 {
				return opts, args[1:], errors.New("--config needs a path")
			}
			opts.configPath = args[1]
			args = args[2:]
		case strings.HasPrefix(a, "--config="):
			opts.configPath = strings.TrimPrefix(a, "--config=")
			args = args[1:]
		default:
			return opts, args, nil
		}
	}
	return opts, args, nil
}

func isSubcommand(name string) bool {
	for _, c := range rootCmd().Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// executeFlagInvocation runs a flag-style call. stdout carries only the
// result; everything else goes to stderr.
func executeFlagInvocation(inv flagInvocation, stdout, stderr io.Writer) int {
	if inv.err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", inv.err)
		return 1
	}
	if strings.TrimSpace(inv.input) == "" {
		fmt.Fprintln(stderr, "Error: no command provided")
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, inv.opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	var runErr error
	switch inv.mode {
	case modeComplete:
		runErr = completeCommand(ctx, a, inv.input, stdout, stderr)
	case modeLearn:
		runErr = learnCommand(ctx, a, inv.input, stdout, stderr)
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// completeCommand prints the completion of partial. The command is printed
// even when recording it fails; the failure is still returned.
func completeCommand(ctx context.Context, a *app, partial string, stdout, stderr io.Writer) error {
	res, err := a.completer.Complete(ctx, partial)
	if err != nil && !errors.Is(err, completion.ErrNotRecorded) {
		if errors.Is(err, completion.ErrEmptyInput) {
			return errors.New("no command provided")
		}
		return fmt.Errorf("no completion found for: %s (%w)", strings.TrimSpace(partial), err)
	}

	if a.cfg.Completion.CopyCommand {
		if cpErr := completion.CopyToClipboard(ctx, res.Command); cpErr != nil {
			a.log.Debug("clipboard copy skipped", zap.Error(cpErr))
		}
	}
	fmt.Fprintln(stdout, res.Command)
	return err
}

// learnCommand creates (or finds) the quiz question for command.
func learnCommand(ctx context.Context, a *app, command string, stdout, stderr io.Writer) error {
	command = strings.TrimSpace(command)
	fmt.Fprintf(stderr, "Creating quiz question for: %s\n", command)

	q, created, err := a.learner.CreateQuestion(ctx, command)
	if err != nil && q.ID == 0 {
		if errors.Is(err, learning.ErrEmptyCommand) {
			return errors.New("no command provided")
		}
		return fmt.Errorf("failed to create quiz question: %w", err)
	}
	if !created {
		fmt.Fprintf(stdout, "Question #%d already exists for: %s\n", q.ID, q.CorrectAnswer)
		return nil
	}
	fmt.Fprintf(stdout, "Created quiz question #%d: %s\n", q.ID, q.Question)
	if err != nil {
		return err
	}
	fmt.Fprintln(stderr, "Practice with: gch quiz")
	return nil
}
