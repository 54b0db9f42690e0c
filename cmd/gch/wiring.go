package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/backend"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/completion"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/learning"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/logging"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/notify"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/quiz"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/tui"
)

// globalOptions are the persistent root flags.
type globalOptions struct {
	configPath string
	debug      bool
}

// app holds the services for one invocation. Nothing is global; every
// command builds its own app from the loaded config.
type app struct {
	cfg     *config.Config
	cfgPath string
	log     *zap.Logger

	history  *store.CompletionLog
	bank     *store.QuestionBank
	sessions *store.SessionLog

	asker     backend.Asker
	completer *completion.Service
	learner   *learning.Service
	notifier  *notify.Notifier
	theme     tui.Theme
}

// newApp loads config, builds the logger, opens the stores and wires the
// services. A backend that cannot be constructed is logged and replaced by
// one that fails every call.
func newApp(ctx context.Context, opts globalOptions) (*app, error) {
	path := opts.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
		Debug: opts.debug,
	})
	if err != nil {
		return nil, err
	}
	logger = logging.ForInvocation(logger)

	asker, err := backend.New(ctx, cfg)
	if err != nil {
		logger.Warn("AI backend unavailable", zap.String("kind", cfg.Backend.Kind), zap.Error(err))
		asker = backend.Unavailable{Err: err}
	}

	a := &app{
		cfg:      cfg,
		cfgPath:  path,
		log:      logger,
		history:  store.OpenCompletionLog(cfg.Storage.CompletionsFile, logger.Named("completions")),
		bank:     store.OpenQuestionBank(cfg.Storage.QuestionsFile, logger.Named("questions")),
		sessions: store.NewSessionLog(cfg.Storage.SessionsFile, logger.Named("sessions")),
		asker:    asker,
		notifier: notify.New(cfg.Notifications.URL, cfg.Notifications.OnQuizComplete, cfg.Notifications.OnQuestionCreated, logger.Named("notify")),
		theme:    tui.NewTheme(cfg.TUI.AccentColor),
	}

	a.completer = completion.New(asker, a.history, cfg.Backend.CompletionTimeout(), logger.Named("completion"))
	a.completer.PreferHistory = cfg.Completion.PreferHistory

	a.learner = learning.New(asker, a.bank, cfg.Backend.QuestionTimeout(), logger.Named("learning"))
	a.learner.OnCreated = a.notifier.QuestionCreated

	return a, nil
}

// probeBackend checks backend availability once and logs a warning on
// failure. Calls are still attempted afterwards.
func (a *app) probeBackend(ctx context.Context) error {
	err := backend.Probe(ctx, a.asker, a.cfg.Backend.ProbeTimeout())
	if err != nil {
		a.log.Warn("AI backend did not respond to probe; completions will fail until it is available", zap.Error(err))
	}
	return err
}

// quizSizing returns the configured quiz sizing.
func (a *app) quizSizing() quiz.Sizing {
	return quiz.Sizing{
		SessionSize:        a.cfg.Quiz.SessionSize,
		SmallBankThreshold: a.cfg.Quiz.SmallBankThreshold,
	}
}

// archiveSession appends a completed session to the history and sends the
// completion notification.
func (a *app) archiveSession(s *quiz.Session) {
	if s.State() != quiz.Complete || s.Len() == 0 {
		return
	}
	rec := s.Record()
	if err := a.sessions.Append(rec); err != nil {
		a.log.Error("saving quiz session", zap.Error(err))
	}
	a.notifier.QuizComplete(rec)
}

// close flushes pending notifications and logs.
func (a *app) close() {
	a.notifier.Wait()
	if err := a.log.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		fmt.Fprintf(os.Stderr, "log sync: %v\n", err)
	}
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
