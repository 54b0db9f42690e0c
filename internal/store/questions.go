package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Question is a stored multiple-choice quiz question. CorrectAnswer is the
// shell command the question was generated for and is unique in the bank.
type Question struct {
	ID            int       `json:"id" yaml:"id"`
	Question      string    `json:"question" yaml:"question"`
	CorrectAnswer string    `json:"correct_answer" yaml:"correct_answer"`
	WrongOptions  []string  `json:"wrong_options" yaml:"wrong_options"`
	Explanation   string    `json:"explanation" yaml:"explanation"`
	CreatedAt     Timestamp `json:"created_at" yaml:"created_at"`
	TimesAsked    int       `json:"times_asked" yaml:"times_asked"`
	TimesCorrect  int       `json:"times_correct" yaml:"times_correct"`
}

// Accuracy returns TimesCorrect/TimesAsked; ok is false when never asked.
func (q Question) Accuracy() (rate float64, ok bool) {
	if q.TimesAsked == 0 {
		return 0, false
	}
	return float64(q.TimesCorrect) / float64(q.TimesAsked), true
}

func (q Question) clone() Question {
	q.WrongOptions = slices.Clone(q.WrongOptions)
	return q
}

// LearningStats summarises the question bank.
type LearningStats struct {
	TotalQuestions int       `json:"total_questions" yaml:"total_questions"`
	TotalAttempts  int       `json:"total_attempts" yaml:"total_attempts"`
	TotalCorrect   int       `json:"total_correct" yaml:"total_correct"`
	AccuracyRate   float64   `json:"accuracy_rate" yaml:"accuracy_rate"`
	LastUpdated    Timestamp `json:"last_updated" yaml:"last_updated"`
}

// ComputeLearningStats derives stats from questions. AccuracyRate is 0 when
// nothing has been attempted.
func ComputeLearningStats(questions []Question, updated time.Time) LearningStats {
	s := LearningStats{TotalQuestions: len(questions), LastUpdated: At(updated)}
	for _, q := range questions {
		s.TotalAttempts += q.TimesAsked
		s.TotalCorrect += q.TimesCorrect
	}
	s.AccuracyRate = float64(s.TotalCorrect) / float64(max(s.TotalAttempts, 1))
	return s
}

type questionDoc struct {
	Questions []Question    `json:"questions"`
	Stats     LearningStats `json:"stats"`
}

// QuestionBank is the quiz question store backed by one JSON document. It is
// the only writer of that file.
type QuestionBank struct {
	mu   sync.Mutex
	file Document[questionDoc]
	doc  questionDoc
	log  *zap.Logger

	// Now is the clock used for created_at and stats; replaced in tests.
	Now func() time.Time
}

// OpenQuestionBank loads the bank at path. A missing or unreadable file
// starts an empty bank; the problem is logged, never returned.
func OpenQuestionBank(path string, logger *zap.Logger) *QuestionBank {
	b := &QuestionBank{
		file: Document[questionDoc]{Path: path},
		log:  logger,
		Now:  time.Now,
	}
	doc, err := b.file.Load()
	if err != nil {
		logger.Warn("question bank unreadable, starting empty", zap.String("path", path), zap.Error(err))
		doc = questionDoc{}
	}
	b.doc.Questions = doc.Questions
	b.doc.Stats = ComputeLearningStats(doc.Questions, doc.Stats.LastUpdated.Time)
	return b
}

// Path returns the backing file location.
func (b *QuestionBank) Path() string {
	return b.file.Path
}

// Lookup returns the question whose correct answer is exactly command.
func (b *QuestionBank) Lookup(command string) (Question, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexByAnswer(command); i >= 0 {
		return b.doc.Questions[i].clone(), true
	}
	return Question{}, false
}

func (b *QuestionBank) indexByAnswer(command string) int {
	for i, q := range b.doc.Questions {
		if q.CorrectAnswer == command {
			return i
		}
	}
	return -1
}

// Add stores q as a new question. ID, CreatedAt and both counters are
// assigned here; ID is the question count before the insert plus one. A
// question whose CorrectAnswer is already stored is rejected with
// ErrDuplicateQuestion. A write failure is returned but the in-memory insert
// stands.
func (b *QuestionBank) Add(q Question) (Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexByAnswer(q.CorrectAnswer) >= 0 {
		return Question{}, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.CorrectAnswer)
	}

	q = q.clone()
	q.ID = len(b.doc.Questions) + 1
	q.CreatedAt = At(b.Now())
	q.TimesAsked = 0
	q.TimesCorrect = 0

	b.doc.Questions = append(b.doc.Questions, q)
	if err := b.persist(); err != nil {
		return q.clone(), err
	}
	b.log.Info("stored question", zap.Int("id", q.ID), zap.String("command", q.CorrectAnswer))
	return q.clone(), nil
}

// RecordAnswer counts one attempt at question id, and one correct answer
// when correct is true, then persists.
func (b *QuestionBank) RecordAnswer(id int, correct bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.doc.Questions, func(q Question) bool { return q.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownQuestion, id)
	}
	b.doc.Questions[i].TimesAsked++
	if correct {
		b.doc.Questions[i].TimesCorrect++
	}
	return b.persist()
}

// persist recomputes stats and saves. Callers hold b.mu.
func (b *QuestionBank) persist() error {
	b.doc.Stats = ComputeLearningStats(b.doc.Questions, b.Now())
	if err := b.file.Save(b.doc); err != nil {
		b.log.Error("saving question bank", zap.String("path", b.file.Path), zap.Error(err))
		return err
	}
	return nil
}

// Questions returns a copy of all questions in insertion order.
func (b *QuestionBank) Questions() []Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Question, len(b.doc.Questions))
	for i, q := range b.doc.Questions {
		out[i] = q.clone()
	}
	return out
}

// Len returns the number of stored questions.
func (b *QuestionBank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.doc.Questions)
}

// Stats returns the current statistics.
func (b *QuestionBank) Stats() LearningStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Stats
}

// MostAsked returns up to n questions ordered by TimesAsked, highest first.
// Ties keep insertion order.
func (b *QuestionBank) MostAsked(n int) []Question {
	qs := b.Questions()
	slices.SortStableFunc(qs, func(a, c Question) int {
		return c.TimesAsked - a.TimesAsked
	})
	if n > 0 && len(qs) > n {
		qs = qs[:n]
	}
	return qs
}
