package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/quiz"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/tui"
)

// Output formats for the stats commands.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func rootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "gch",
		Short: "AI shell command completion and command quizzes",
		Long: `gch completes partial or natural-language shell commands with an AI
backend, keeps a history of what it completed, and turns commands you want
to remember into multiple-choice quiz questions.

Flag-style use:
  gch <words...> -g    print the completed command
  gch <command...> -l  create a quiz question for command`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $GCH_CONFIG or $XDG_CONFIG_HOME/gch/config.toml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		startCmd(opts),
		triggerCmd(opts),
		statsCmd(opts),
		suggestCmd(opts),
		completeCmd(opts),
		learnCmd(opts),
		quizCmd(opts),
		initCmd(opts),
	)
	return root
}

// withApp builds the app for cmd and runs fn with it.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signalContext()
	defer cancel()
	a, err := newApp(ctx, *opts)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func startCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the background trigger listener",
		Long: `Run the listener that completes the command line of a tmux pane.
Bind a key to the trigger in ~/.tmux.conf, for example:

  bind-key -n M-g run-shell -b "gch trigger"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return runListener(ctx, a, cmd.OutOrStdout())
			})
		},
	}
}

func triggerCmd(opts *globalOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Ask the running listener to complete the current line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return runTrigger(ctx, a, verbose, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the listener's reply")
	return cmd
}

func statsCmd(opts *globalOptions) *cobra.Command {
	var format string
	var recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return showCompletionStats(a, cmd.OutOrStdout(), format, recent)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json or yaml")
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent completions to show")
	return cmd
}

func suggestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial...>",
		Short: "Print the most frequent past completion for the input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				partial := strings.Join(args, " ")
				got, ok := a.completer.Suggest(partial)
				if !ok {
					return fmt.Errorf("no history for: %s", partial)
				}
				fmt.Fprintln(cmd.OutOrStdout(), got)
				return nil
			})
		},
	}
}

func completeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <partial...>",
		Short: "Complete a command (same as: gch <partial...> -g)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return completeCommand(ctx, a, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}
}

func learnCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "learn <command...>",
		Short: "Create a quiz question (same as: gch <command...> -l)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return learnCommand(ctx, a, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}
}

func quizCmd(opts *globalOptions) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "quiz [N]",
		Short: "Practice stored commands",
		Long: `Run a quiz over the stored questions. With N, ask N questions (at most
the number stored). Without N, banks of up to five questions are asked in
full and larger banks give a ten-question session.

Runs full-screen on a terminal; --plain (or piped input) uses line mode,
which starts with a menu when N is omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("N must be a positive number, got %q", args[0])
				}
				requested = n
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return runQuiz(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout(), requested, plain)
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use line mode instead of the full-screen UI")
	cmd.AddCommand(quizStatsCmd(opts), quizHistoryCmd(opts))
	return cmd
}

func quizStatsCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return showLearningStats(a, cmd.OutOrStdout(), format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json or yaml")
	return cmd
}

func quizHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent quiz sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				records, err := a.sessions.Recent(limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.theme.SessionHistory(records))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of sessions to show")
	return cmd
}

func initCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := config.InitFile(opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created)
			return nil
		},
	}
}

// completionReport is the machine-readable form of `gch stats`.
type completionReport struct {
	Stats  store.CompletionStats   `json:"stats" yaml:"stats"`
	Recent []store.CompletionEntry `json:"recent" yaml:"recent"`
}

func showCompletionStats(a *app, w io.Writer, format string, recent int) error {
	report := completionReport{Stats: a.history.Stats(), Recent: a.history.Recent(recent)}
	if format == formatTable {
		_, err := fmt.Fprintln(w, a.theme.CompletionStats(report.Stats, report.Recent))
		return err
	}
	return encode(w, format, report)
}

// learningReport is the machine-readable form of `gch quiz stats`.
type learningReport struct {
	Stats     store.LearningStats `json:"stats" yaml:"stats"`
	MostAsked []store.Question    `json:"most_asked" yaml:"most_asked"`
}

func showLearningStats(a *app, w io.Writer, format string) error {
	report := learningReport{Stats: a.bank.Stats(), MostAsked: a.bank.MostAsked(store.TopLimit)}
	if format == formatTable {
		_, err := fmt.Fprintln(w, a.theme.LearningStats(report.Stats, report.MostAsked))
		return err
	}
	return encode(w, format, report)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatTable, formatJSON, formatYAML)
	}
}

// isTerminal reports whether both stdin and stdout are terminals.
func isTerminal(in io.Reader, out io.Writer) bool {
	inFile, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(inFile.Fd())) {
		return false
	}
	outFile, ok := out.(*os.File)
	return ok && term.IsTerminal(int(outFile.Fd()))
}

// runQuiz picks the full-screen UI on a terminal and line mode otherwise.
func runQuiz(ctx context.Context, a *app, in io.Reader, out io.Writer, requested int, plain bool) error {
	tty := isTerminal(in, out)
	if tty && !plain {
		r := &quiz.Runner{Bank: a.bank, Sizing: a.quizSizing()}
		s := r.NewSession(requested)
		if s.Len() == 0 {
			fmt.Fprintln(out, "No quiz questions yet. Create one with: gch <command> -l")
			return nil
		}
		final, err := tui.Run(s, a.cfg.TUI.AccentColor)
		if err != nil {
			return err
		}
		a.archiveSession(final.Session())
		if sc := final.Session().Score(); !final.Aborted() {
			fmt.Fprintf(out, "Quiz complete: %d/%d correct (%.1f%%). %s\n", sc.Correct, sc.Total, sc.Percent(), sc.Verdict())
		}
		return nil
	}

	var prompter quiz.Prompter
	if tty {
		rl, err := quiz.NewReadlinePrompter()
		if err != nil {
			return err
		}
		defer rl.Close()
		prompter = rl
	} else {
		prompter = quiz.NewLinePrompter(in, out)
	}

	r := &quiz.Runner{
		Bank:       a.bank,
		In:         prompter,
		Out:        out,
		Sizing:     a.quizSizing(),
		Log:        a.log.Named("quiz"),
		OnComplete: a.archiveSession,
		ShowStats: func(w io.Writer) error {
			return showLearningStats(a, w, formatTable)
		},
	}
	if requested == 0 {
		return r.Menu(ctx)
	}
	_, err := r.Run(ctx, requested)
	if errors.Is(err, quiz.ErrAborted) {
		fmt.Fprintln(out, "\nQuiz aborted.")
		return nil
	}
	return err
}
