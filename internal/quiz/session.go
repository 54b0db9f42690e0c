package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

// State is the session lifecycle stage.
type State int

const (
	Idle State = iota
	Presenting
	Scored
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Presenting:
		return "presenting"
	case Scored:
		return "scored"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrWrongState is returned when an operation does not apply to the current
// state.
var ErrWrongState = errors.New("quiz: operation not valid in this state")

// AnswerRecorder persists per-question attempt counters.
type AnswerRecorder interface {
	RecordAnswer(id int, correct bool) error
}

// Feedback describes a scored answer.
type Feedback struct {
	Chosen      int
	Correct     bool
	Answer      string
	Explanation string
}

// Session is one quiz run.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	trials   []Trial
	idx      int
	state    State
	score    Score
	feedback Feedback
	rec      AnswerRecorder

	// Now is the session clock; replaced in tests.
	Now func() time.Time
}

// NewSession prepares a session over questions in the given order.
func NewSession(questions []store.Question, rec AnswerRecorder, rng *rand.Rand) *Session {
	if rng == nil {
		rng = NewRand()
	}
	trials := make([]Trial, len(questions))
	for i, q := range questions {
		trials[i] = NewTrial(q, rng)
	}
	return &Session{ID: uuid.NewString(), trials: trials, rec: rec, Now: time.Now}
}

// State returns the current stage.
func (s *Session) State() State { return s.state }

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.trials) }

// Index returns the 0-based position of the current question.
func (s *Session) Index() int { return s.idx }

// Score returns the tally so far.
func (s *Session) Score() Score { return s.score }

// Feedback returns the result of the last answer.
func (s *Session) Feedback() Feedback { return s.feedback }

// Start presents the first question. An empty session completes at once.
func (s *Session) Start() error {
	if s.state != Idle {
		return fmt.Errorf("%w: start from %s", ErrWrongState, s.state)
	}
	s.StartedAt = s.Now()
	if len(s.trials) == 0 {
		s.finish()
		return nil
	}
	s.state = Presenting
	return nil
}

// Current returns the trial being presented or just scored.
func (s *Session) Current() (Trial, bool) {
	if s.state != Presenting && s.state != Scored {
		return Trial{}, false
	}
	return s.trials[s.idx], true
}

// Answer scores choice (1-based) for the current trial and records the
// attempt. The session advances to Scored even when recording fails; the
// write error is returned alongside the feedback.
func (s *Session) Answer(choice int) (Feedback, error) {
	if s.state != Presenting {
		return Feedback{}, fmt.Errorf("%w: answer in %s", ErrWrongState, s.state)
	}
	t := s.trials[s.idx]
	if choice < 1 || choice > len(t.Options) {
		return Feedback{}, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}

	correct := choice == t.Correct
	s.score.Total++
	if correct {
		s.score.Correct++
	}
	s.feedback = Feedback{
		Chosen:      choice,
		Correct:     correct,
		Answer:      t.Question.CorrectAnswer,
		Explanation: t.Question.Explanation,
	}
	s.state = Scored

	if s.rec != nil {
		if err := s.rec.RecordAnswer(t.Question.ID, correct); err != nil {
			return s.feedback, fmt.Errorf("quiz: record answer: %w", err)
		}
	}
	return s.feedback, nil
}

// Next moves from Scored to the next question, or to Complete after the
// last one.
func (s *Session) Next() error {
	if s.state != Scored {
		return fmt.Errorf("%w: next from %s", ErrWrongState, s.state)
	}
	s.idx++
	if s.idx >= len(s.trials) {
		s.finish()
		return nil
	}
	s.state = Presenting
	return nil
}

func (s *Session) finish() {
	s.state = Complete
	s.FinishedAt = s.Now()
}

// Record summarises a completed session for the session log.
func (s *Session) Record() store.SessionRecord {
	return store.SessionRecord{
		ID:         s.ID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Correct:    s.score.Correct,
		Total:      s.score.Total,
	}
}
