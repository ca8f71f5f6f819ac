// Package server provides a context-bound HTTP server and the service's
// plain HTTP surface: health, the public room listing and the leaderboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/songloop-games/songloop/internal/logging"
)

const shutdownGrace = 5 * time.Second

type Server struct {
	port     string
	listener net.Listener
}

// New binds the port immediately so startup fails fast when it is taken.
func New(port string) (*Server, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen on :%s: %w", port, err)
	}
	return &Server{port: port, listener: listener}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ServeHTTP serves until ctx is cancelled, then drains with a short grace
// period.
func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Infof("shutting down http server on :%s", s.port)

		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownGrace)
		defer done()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
