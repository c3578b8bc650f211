package ipcserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/state"
)

// Server is chester's local IPC surface: a net/http server listening on a
// Unix domain socket instead of TCP, so only processes on the same host
// (and with filesystem access to the socket path) can reach it.
type Server struct {
	socketPath string
	mux        *http.ServeMux
	log        zerolog.Logger

	server   *http.Server
	listener net.Listener
}

// NewServer builds a Server over reader/writer, bound to socketPath at
// Start time.
func NewServer(reader state.Reader, writer state.Writer, socketPath string) *Server {
	s := &Server{
		socketPath: socketPath,
		mux:        http.NewServeMux(),
		log:        chesterlog.WithComponent("ipcserver"),
	}

	h := &handlers{reader: reader, writer: writer}
	s.mux.HandleFunc("/check/status", h.checkStatus)
	s.mux.HandleFunc("/tests/status", h.testsStatus)
	s.mux.HandleFunc("/coverage/status", h.coverageStatus)
	s.mux.HandleFunc("/repo/root", h.repoRoot)

	return s
}

// Start removes any stale socket file, binds socketPath, and serves until
// Shutdown is called. It blocks; call it from its own goroutine.
func (s *Server) Start() error {
	if err := removeStaleSocket(s.socketPath); err != nil {
		return &Error{Op: "cleanup", Err: err}
	}

	lis, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return &Error{Op: "listen", Err: err}
	}
	s.listener = lis

	s.server = &http.Server{
		Handler:      s.withLogging(s.mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info().Str("socket", s.socketPath).Msg("ipc server listening")
	err = s.server.Serve(lis)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return removeStaleSocket(s.socketPath)
}

func removeStaleSocket(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Error is ipcserver's own error type: a failure to bind or clean up the
// Unix socket.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("ipcserver: %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }
