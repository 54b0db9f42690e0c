package quiz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

// ErrAborted is returned when the user leaves a session early.
var ErrAborted = errors.New("quiz: aborted")

// Prompter reads one line of input after showing prompt.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ReadlinePrompter adapts a readline instance to Prompter.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter opens a readline instance on the terminal.
func NewReadlinePrompter() (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("quiz: readline: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

// Prompt implements Prompter. Ctrl-C and Ctrl-D both end input with io.EOF.
func (p *ReadlinePrompter) Prompt(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

// Close releases the terminal.
func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

// LinePrompter reads answers from a plain reader, for piped input.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter returns a Prompter reading lines from r and echoing
// prompts to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Bank is the subset of store.QuestionBank a quiz needs.
type Bank interface {
	AnswerRecorder
	Questions() []store.Question
}

// Runner plays quiz sessions in plain line mode.
type Runner struct {
	Bank   Bank
	In     Prompter
	Out    io.Writer
	Sizing Sizing
	Rand   *rand.Rand
	Log    *zap.Logger

	// ShowStats prints learning statistics for the menu.
	ShowStats func(w io.Writer) error
	// OnComplete is called with every session that reaches Complete.
	OnComplete func(*Session)
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// NewSession draws questions from the bank. requested 0 means automatic
// sizing.
func (r *Runner) NewSession(requested int) *Session {
	rng := r.Rand
	if rng == nil {
		rng = NewRand()
	}
	picked := Select(r.Bank.Questions(), requested, r.Sizing, rng)
	return NewSession(picked, r.Bank, rng)
}

// Run plays one session to completion. An empty bank prints a hint and
// returns a completed empty session.
func (r *Runner) Run(ctx context.Context, requested int) (*Session, error) {
	s := r.NewSession(requested)
	if s.Len() == 0 {
		fmt.Fprintln(r.Out, "No quiz questions yet. Create one with: gch <command> -l")
		return s, nil
	}
	if err := s.Start(); err != nil {
		return s, err
	}
	fmt.Fprintf(r.Out, "Quiz: %d question(s). Answer with the option number.\n", s.Len())

	for s.State() != Complete {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		t, _ := s.Current()
		r.present(s, t)

		choice, err := r.readChoice(len(t.Options))
		if err != nil {
			return s, err
		}
		fb, err := s.Answer(choice)
		if err != nil {
			r.logger().Error("recording answer", zap.Int("question", t.Question.ID), zap.Error(err))
			fmt.Fprintf(r.Out, "warning: %v\n", err)
		}
		r.feedback(fb)
		if err := s.Next(); err != nil {
			return s, err
		}
	}

	r.summary(s.Score())
	if r.OnComplete != nil {
		r.OnComplete(s)
	}
	return s, nil
}

func (r *Runner) present(s *Session, t Trial) {
	fmt.Fprintf(r.Out, "\nQuestion %d/%d\n%s\n\n", s.Index()+1, s.Len(), t.Question.Question)
	for i, o := range t.Options {
		fmt.Fprintf(r.Out, "  %d. %s\n", i+1, o)
	}
}

// readChoice reprompts until the input is a valid option number.
func (r *Runner) readChoice(options int) (int, error) {
	for {
		line, err := r.In.Prompt(fmt.Sprintf("Your answer (1-%d): ", options))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrAborted
			}
			return 0, err
		}
		n, err := ParseChoice(line, options)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(r.Out, "Please enter a number between 1 and %d.\n", options)
	}
}

func (r *Runner) feedback(fb Feedback) {
	if fb.Correct {
		fmt.Fprintln(r.Out, "Correct!")
	} else {
		fmt.Fprintf(r.Out, "Incorrect. The answer is: %s\n", fb.Answer)
	}
	if fb.Explanation != "" {
		fmt.Fprintf(r.Out, "%s\n", fb.Explanation)
	}
}

func (r *Runner) summary(sc Score) {
	fmt.Fprintf(r.Out, "\nQuiz complete: %d/%d correct (%.1f%%). %s\n", sc.Correct, sc.Total, sc.Percent(), sc.Verdict())
}

// Menu shows the interactive menu until the user exits.
func (r *Runner) Menu(ctx context.Context) error {
	for {
		fmt.Fprint(r.Out, "\n1. Start quiz\n2. View statistics\n3. Exit\n")
		line, err := r.In.Prompt("Choose an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch strings.TrimSpace(line) {
		case "1":
			if _, err := r.Run(ctx, 0); err != nil {
				if errors.Is(err, ErrAborted) {
					fmt.Fprintln(r.Out, "\nQuiz aborted.")
					continue
				}
				return err
			}
		case "2":
			if r.ShowStats != nil {
				if err := r.ShowStats(r.Out); err != nil {
					return err
				}
			}
		case "3":
			return nil
		default:
			fmt.Fprintln(r.Out, "Please choose 1, 2 or 3.")
		}
	}
}
