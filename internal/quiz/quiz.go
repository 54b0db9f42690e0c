// Package quiz runs multiple-choice practice sessions over the stored
// question bank.
//
// A session moves Idle -> Presenting -> Scored -> Presenting ... -> Complete.
// Each answer is written back to the bank before the next question is shown.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

// ErrInvalidChoice is returned by ParseChoice for input that is not an
// option number.
var ErrInvalidChoice = errors.New("quiz: invalid choice")

// Sizing controls how many questions a session draws.
type Sizing struct {
	// SessionSize caps an automatic session.
	SessionSize int
	// SmallBankThreshold: banks of at most this many questions are asked in
	// full.
	SmallBankThreshold int
}

// DefaultSizing matches the stock configuration.
var DefaultSizing = Sizing{SessionSize: 10, SmallBankThreshold: 5}

// Count returns the number of questions to ask from a bank of total when
// requested were asked for (0 means automatic).
func (s Sizing) Count(total, requested int) int {
	switch {
	case total <= 0:
		return 0
	case requested > 0:
		return min(requested, total)
	case total <= s.SmallBankThreshold:
		return total
	default:
		return min(s.SessionSize, total)
	}
}

// NewRand returns a randomly seeded generator.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Select draws Sizing.Count questions uniformly without replacement and
// returns them in random presentation order. The input is not modified.
func Select(questions []store.Question, requested int, sizing Sizing, rng *rand.Rand) []store.Question {
	if rng == nil {
		rng = NewRand()
	}
	n := sizing.Count(len(questions), requested)
	if n == 0 {
		return nil
	}
	out := make([]store.Question, 0, n)
	for _, i := range rng.Perm(len(questions))[:n] {
		out = append(out, questions[i])
	}
	return out
}

// Trial is one question as presented: the correct answer and the three
// decoys in shuffled order.
type Trial struct {
	Question store.Question
	Options  []string
	// Correct is the 1-based position of the correct answer in Options.
	Correct int
}

// NewTrial shuffles q's answer among its wrong options.
func NewTrial(q store.Question, rng *rand.Rand) Trial {
	if rng == nil {
		rng = NewRand()
	}
	opts := make([]string, 0, len(q.WrongOptions)+1)
	opts = append(opts, q.WrongOptions...)
	opts = append(opts, q.CorrectAnswer)
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

	correct := 0
	for i, o := range opts {
		if o == q.CorrectAnswer {
			correct = i + 1
			break
		}
	}
	return Trial{Question: q, Options: opts, Correct: correct}
}

// ParseChoice reads a 1-based option number in [1, options].
func ParseChoice(input string, options int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > options {
		return 0, fmt.Errorf("%w: enter a number from 1 to %d", ErrInvalidChoice, options)
	}
	return n, nil
}

// Score is a session tally.
type Score struct {
	Correct int
	Total   int
}

// Percent returns the score as a percentage; 0 for an empty session.
func (s Score) Percent() float64 {
	return store.Percent(s.Correct, s.Total)
}

// Verdict is the one-line summary shown after a session.
func (s Score) Verdict() string {
	switch p := s.Percent(); {
	case p >= 80:
		return "Excellent!"
	case p >= 60:
		return "Keep practicing!"
	default:
		return "Try again!"
	}
}
