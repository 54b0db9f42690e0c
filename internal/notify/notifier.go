// Package notify sends fire-and-forget HTTP notifications for quiz events.
// The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

const defaultTitle = "gch"

// Notifier posts plain-text HTTP notifications for selected events.
type Notifier struct {
	url               string
	title             string
	onQuizComplete    bool
	onQuestionCreated bool
	client            *resty.Client
	log               *zap.Logger
	wg                sync.WaitGroup
}

// New creates a Notifier. A nil Notifier (returned for an empty URL) is
// valid and sends nothing.
func New(url string, onQuizComplete, onQuestionCreated bool, logger *zap.Logger) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		url:               url,
		title:             defaultTitle,
		onQuizComplete:    onQuizComplete,
		onQuestionCreated: onQuestionCreated,
		client:            resty.New().SetTimeout(10 * time.Second),
		log:               logger,
	}
}

// QuizComplete announces a finished quiz session.
func (n *Notifier) QuizComplete(r store.SessionRecord) {
	if n == nil || !n.onQuizComplete {
		return
	}
	n.send(fmt.Sprintf("Quiz complete: %d/%d correct (%.0f%%)", r.Correct, r.Total, r.Percent()))
}

// QuestionCreated announces a new quiz question.
func (n *Notifier) QuestionCreated(q store.Question) {
	if n == nil || !n.onQuestionCreated {
		return
	}
	n.send(fmt.Sprintf("New quiz question #%d: %s", q.ID, q.CorrectAnswer))
}

// Wait blocks until in-flight notifications finish. Short-lived commands
// call it before exiting.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) send(message string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.post(message)
	}()
}

// post sends a plain-text POST to the configured URL. Failures are logged
// at debug level only so notification problems never interrupt a command.
func (n *Notifier) post(message string) {
	resp, err := n.client.R().
		SetHeader("Content-Type", "text/plain").
		SetHeader("X-Title", n.title).
		SetBody(message).
		Post(n.url)
	if err != nil {
		n.log.Debug("notification failed", zap.Error(err))
		return
	}
	if resp.IsError() {
		n.log.Debug("notification rejected", zap.String("status", resp.Status()))
	}
}
