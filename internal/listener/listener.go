// Package listener runs the background trigger service. A terminal key
// binding runs `gch trigger`, which asks the listener over a Unix socket to
// complete the line currently being edited.
//
// Wire protocol: the client sends one request line, the server answers with
// one line "<status>\t<text>" and closes the connection.
package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request verbs.
const (
	VerbComplete = "complete"
	VerbPing     = "ping"
)

// Reply statuses.
const (
	StatusOK        = "ok"
	StatusUnchanged = "unchanged"
	StatusError     = "error"
)

// ErrAlreadyRunning is returned when another listener owns the socket.
var ErrAlreadyRunning = errors.New("listener: already running")

// Reply is the server's answer to one request.
type Reply struct {
	Status string
	Text   string
}

func (r Reply) encode() string {
	return r.Status + "\t" + strings.ReplaceAll(r.Text, "\n", " ") + "\n"
}

func decodeReply(line string) (Reply, error) {
	status, text, ok := strings.Cut(strings.TrimRight(line, "\r\n"), "\t")
	if !ok {
		return Reply{}, fmt.Errorf("listener: malformed reply %q", line)
	}
	return Reply{Status: status, Text: text}, nil
}

// Handler serves one completion request.
type Handler func(ctx context.Context) Reply

// Server accepts trigger requests on a Unix socket. Requests are served one
// at a time.
type Server struct {
	Socket string
	Handle Handler
	Log    *zap.Logger

	// Background, when set, runs alongside the socket server and shares its
	// lifetime (for example a config watcher).
	Background []func(ctx context.Context) error

	// ReadTimeout bounds reading a request line.
	ReadTimeout time.Duration
}

// Run serves until ctx is cancelled or a component fails. The socket file is
// removed on return.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	defer os.Remove(s.Socket)
	s.Log.Info("listening", zap.String("socket", s.Socket))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("listener: accept: %w", err)
			}
			s.serve(ctx, conn)
		}
	})
	for _, fn := range s.Background {
		g.Go(func() error { return fn(ctx) })
	}

	err = g.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

// listen binds the socket, clearing a stale file left by a crashed process.
func (s *Server) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.Socket), 0700); err != nil {
		return nil, fmt.Errorf("listener: mkdir: %w", err)
	}
	if _, err := os.Stat(s.Socket); err == nil {
		if c, dialErr := net.DialTimeout("unix", s.Socket, time.Second); dialErr == nil {
			c.Close()
			return nil, fmt.Errorf("%w on %s", ErrAlreadyRunning, s.Socket)
		}
		if err := os.Remove(s.Socket); err != nil {
			return nil, fmt.Errorf("listener: remove stale socket: %w", err)
		}
	}
	ln, err := net.Listen("unix", s.Socket)
	if err != nil {
		return nil, fmt.Errorf("listener: listen %s: %w", s.Socket, err)
	}
	return ln, nil
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	timeout := s.ReadTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		s.Log.Debug("reading request", zap.Error(err))
		return
	}

	var reply Reply
	switch verb := strings.TrimSpace(line); verb {
	case VerbPing:
		reply = Reply{Status: StatusOK, Text: "pong"}
	case VerbComplete:
		reply = s.Handle(ctx)
	default:
		reply = Reply{Status: StatusError, Text: fmt.Sprintf("unknown request %q", verb)}
	}
	s.Log.Debug("served", zap.String("status", reply.Status), zap.String("text", reply.Text))

	if _, err := conn.Write([]byte(reply.encode())); err != nil {
		s.Log.Debug("writing reply", zap.Error(err))
	}
}

// Send dials the listener at socket, sends verb and returns the reply.
func Send(ctx context.Context, socket, verb string) (Reply, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return Reply{}, fmt.Errorf("listener: not running on %s: %w", socket, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := conn.Write([]byte(verb + "\n")); err != nil {
		return Reply{}, fmt.Errorf("listener: send: %w", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return Reply{}, fmt.Errorf("listener: read reply: %w", err)
	}
	return decodeReply(line)
}

// Trigger asks the listener to complete the current terminal line.
func Trigger(ctx context.Context, socket string) (Reply, error) {
	return Send(ctx, socket, VerbComplete)
}
