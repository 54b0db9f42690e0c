// Package store owns the gch backing files: the completion history, the quiz
// question bank, and the quiz session log. The two JSON documents are
// rewritten whole on every mutation with a write-then-rename so an interrupted
// process always leaves the last successfully written version on disk.
//
// Derived statistics are never trusted from disk. They are recomputed from
// the entry sequence on open and after every mutation.
package store

import "errors"

// ErrDuplicateQuestion is returned by QuestionBank.Add when a question with
// the same correct answer already exists.
var ErrDuplicateQuestion = errors.New("store: question already exists for command")

// ErrUnknownQuestion is returned when a question id is not in the bank.
var ErrUnknownQuestion = errors.New("store: unknown question")

// Percent returns correct/total as a percentage, 0 when total is 0.
func Percent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
