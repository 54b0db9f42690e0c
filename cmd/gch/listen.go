package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/completion"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/config"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/listener"
	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/terminal"
)

// triggerSlack is added to the completion timeout to bound a trigger round
// trip, so it only fires when the listener itself hangs.
const triggerSlack = 5 * time.Second

// liveCompleter is the listener's completion state. Config reloads swap the
// editor and tuning fields while requests may be in flight.
type liveCompleter struct {
	mu     sync.Mutex
	svc    *completion.Service
	editor terminal.LineEditor
	log    *zap.Logger
}

// handle serves one trigger: complete the current terminal line.
func (l *liveCompleter) handle(ctx context.Context) listener.Reply {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.svc.CompleteTerminal(ctx, l.editor)
	switch {
	case err == nil:
		return listener.Reply{Status: listener.StatusOK, Text: res.Command}
	case errors.Is(err, completion.ErrUnchanged):
		return listener.Reply{Status: listener.StatusUnchanged, Text: res.Command}
	case errors.Is(err, completion.ErrNotRecorded):
		l.log.Warn("completion not recorded", zap.Error(err))
		return listener.Reply{Status: listener.StatusOK, Text: res.Command}
	default:
		l.log.Warn("trigger failed", zap.Error(err))
		return listener.Reply{Status: listener.StatusError, Text: err.Error()}
	}
}

// apply takes the reloadable settings from cfg. Storage paths, the backend
// and the socket need a restart.
func (l *liveCompleter) apply(cfg *config.Config) {
	ed, err := terminal.New(cfg.Terminal)
	if err != nil {
		l.log.Warn("ignoring terminal settings", zap.Error(err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.svc.Timeout = cfg.Backend.CompletionTimeout()
	l.svc.PreferHistory = cfg.Completion.PreferHistory
	if err == nil {
		l.editor = ed
	}
	l.log.Info("config reloaded",
		zap.Duration("completion_timeout", l.svc.Timeout),
		zap.Bool("prefer_history", l.svc.PreferHistory),
		zap.String("terminal", cfg.Terminal.Kind))
}

// runListener serves trigger requests until ctx is cancelled.
func runListener(ctx context.Context, a *app, out io.Writer) error {
	editor, err := terminal.New(a.cfg.Terminal)
	if err != nil {
		return err
	}
	_ = a.probeBackend(ctx)

	live := &liveCompleter{svc: a.completer, editor: editor, log: a.log.Named("listener")}
	watcher := config.NewWatcher(a.cfgPath, a.log.Named("config"), live.apply)

	srv := &listener.Server{
		Socket:     a.cfg.Listener.Socket,
		Handle:     live.handle,
		Log:        a.log.Named("listener"),
		Background: []func(context.Context) error{watcher.Run},
	}
	registerQuitHandler(func() { os.Remove(srv.Socket) })

	fmt.Fprintf(out, "gch listening on %s (Ctrl-C to stop)\n", srv.Socket)
	if _, ok := editor.(terminal.None); ok {
		fmt.Fprintln(out, "terminal.kind is \"none\": triggers will fail until it is set to \"tmux\"")
	} else {
		fmt.Fprintln(out, `Bind a key in ~/.tmux.conf: bind-key -n M-g run-shell -b "gch trigger"`)
	}
	return srv.Run(ctx)
}

// runTrigger sends one completion request to the running listener.
func runTrigger(ctx context.Context, a *app, verbose bool, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Backend.CompletionTimeout()+triggerSlack)
	defer cancel()

	reply, err := listener.Trigger(ctx, a.cfg.Listener.Socket)
	if err != nil {
		return fmt.Errorf("%w (start it with: gch start)", err)
	}
	if verbose {
		fmt.Fprintf(out, "%s: %s\n", reply.Status, reply.Text)
	}
	if reply.Status == listener.StatusError {
		return errors.New(reply.Text)
	}
	return nil
}
