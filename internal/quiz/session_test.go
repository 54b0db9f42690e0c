package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerLog struct {
	calls []struct {
		id      int
		correct bool
	}
	err error
}

func (a *answerLog) RecordAnswer(id int, correct bool) error {
	a.calls = append(a.calls, struct {
		id      int
		correct bool
	}{id, correct})
	return a.err
}

func wrongChoice(t Trial) int {
	if t.Correct == 1 {
		return 2
	}
	return 1
}

func TestSessionLifecycle(t *testing.T) {
	rec := &answerLog{}
	s := NewSession(bank(2), rec, seeded(7))
	assert.Equal(t, Idle, s.State())
	assert.NotEmpty(t, s.ID)

	_, err := s.Answer(1)
	assert.True(t, errors.Is(err, ErrWrongState), "cannot answer before start")

	require.NoError(t, s.Start())
	assert.Equal(t, Presenting, s.State())

	tr, ok := s.Current()
	require.True(t, ok)
	fb, err := s.Answer(tr.Correct)
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, Scored, s.State())

	_, err = s.Answer(tr.Correct)
	assert.True(t, errors.Is(err, ErrWrongState), "no double answer")

	require.NoError(t, s.Next())
	tr, _ = s.Current()
	fb, err = s.Answer(wrongChoice(tr))
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, tr.Question.CorrectAnswer, fb.Answer)
	assert.Equal(t, tr.Question.Explanation, fb.Explanation)

	require.NoError(t, s.Next())
	assert.Equal(t, Complete, s.State())
	assert.Equal(t, Score{Correct: 1, Total: 2}, s.Score())
	assert.InDelta(t, 50.0, s.Score().Percent(), 1e-9)

	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[0].correct)
	assert.False(t, rec.calls[1].correct)

	r := s.Record()
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, 1, r.Correct)
	assert.Equal(t, 2, r.Total)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))
}

func TestSessionInvalidChoiceKeepsPresenting(t *testing.T) {
	rec := &answerLog{}
	s := NewSession(bank(1), rec, seeded(3))
	require.NoError(t, s.Start())

	_, err := s.Answer(5)
	assert.True(t, errors.Is(err, ErrInvalidChoice))
	assert.Equal(t, Presenting, s.State())
	assert.Empty(t, rec.calls)
	assert.Equal(t, Score{}, s.Score())
}

func TestSessionEmpty(t *testing.T) {
	s := NewSession(nil, nil, seeded(1))
	require.NoError(t, s.Start())
	assert.Equal(t, Complete, s.State())
	assert.Equal(t, 0.0, s.Score().Percent())
}

func TestSessionRecordFailureStillScores(t *testing.T) {
	rec := &answerLog{err: errors.New("disk full")}
	s := NewSession(bank(1), rec, seeded(3))
	require.NoError(t, s.Start())
	tr, _ := s.Current()

	fb, err := s.Answer(tr.Correct)
	assert.Error(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, Scored, s.State())
	assert.Equal(t, 1, s.Score().Correct)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "presenting", Presenting.String())
	assert.Equal(t, "State(9)", State(9).String())
}
