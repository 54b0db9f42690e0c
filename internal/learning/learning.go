// Package learning turns shell commands into stored quiz questions.
package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/backend"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/response"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

// ErrEmptyCommand is returned for a blank command.
var ErrEmptyCommand = errors.New("learning: empty command")

// Bank is the subset of store.QuestionBank the service uses.
type Bank interface {
	Lookup(command string) (store.Question, bool)
	Add(q store.Question) (store.Question, error)
}

// Service creates quiz questions.
type Service struct {
	Asker   backend.Asker
	Bank    Bank
	Timeout time.Duration
	Log     *zap.Logger

	// OnCreated, when set, is called after a new question is stored.
	OnCreated func(store.Question)
}

// New creates a Service.
func New(asker backend.Asker, bank Bank, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{Asker: asker, Bank: bank, Timeout: timeout, Log: logger}
}

// CreateQuestion makes sure a question exists whose answer is command. When
// one is already stored it is returned with created=false and the backend is
// not contacted. Otherwise the backend drafts a question, its correct answer
// is set to command verbatim, and the question is stored.
//
// A storage write failure returns the stored question, created=true and the
// error.
func (s *Service) CreateQuestion(ctx context.Context, command string) (q store.Question, created bool, err error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return store.Question{}, false, ErrEmptyCommand
	}

	if existing, ok := s.Bank.Lookup(command); ok {
		s.Log.Info("question already exists", zap.String("command", command), zap.Int("id", existing.ID))
		return existing, false, nil
	}

	raw, err := backend.AskWithin(ctx, s.Asker, backend.QuestionPrompt(command), s.Timeout)
	if err != nil {
		s.Log.Warn("backend request failed", zap.String("command", command), zap.Error(err))
		return store.Question{}, false, fmt.Errorf("learning: %w", err)
	}

	draft, err := response.ParseQuestion(raw)
	if err != nil {
		s.Log.Warn("unusable question reply", zap.String("command", command), zap.Error(err))
		return store.Question{}, false, fmt.Errorf("learning: %w", err)
	}
	for _, o := range draft.WrongOptions {
		if strings.TrimSpace(o) == command {
			s.Log.Warn("drafted decoy repeats the answer", zap.String("command", command))
			return store.Question{}, false, fmt.Errorf("learning: wrong option equals %q: %w", command, response.ErrMalformedQuestion)
		}
	}
	if draft.CorrectAnswer != command {
		s.Log.Debug("overriding drafted answer", zap.String("drafted", draft.CorrectAnswer), zap.String("command", command))
	}

	q, err = s.Bank.Add(store.Question{
		Question:      draft.Question,
		CorrectAnswer: command,
		WrongOptions:  draft.WrongOptions,
		Explanation:   draft.Explanation,
	})
	if errors.Is(err, store.ErrDuplicateQuestion) {
		// Lost a race with another writer; report what is stored.
		if existing, ok := s.Bank.Lookup(command); ok {
			return existing, false, nil
		}
	}
	if err != nil && q.ID == 0 {
		return store.Question{}, false, fmt.Errorf("learning: %w", err)
	}
	if s.OnCreated != nil {
		s.OnCreated(q)
	}
	if err != nil {
		return q, true, fmt.Errorf("learning: %w", err)
	}
	return q, true, nil
}
