// Package server runs the REST and SOAP listeners side by side in one
// process.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second
)

// Endpoint is one listener managed by the Supervisor.
type Endpoint struct {
	// Name identifies the listener in logs, e.g. "rest" or "soap".
	Name string
	// Addr is the ip:port to bind.
	Addr string
	// Handler serves every request accepted on Addr.
	Handler http.Handler
}

// Supervisor starts the background and foreground listeners.
//
// The background endpoint runs on its own goroutine that Run never joins;
// the foreground endpoint blocks Run. A bind failure stops only the listener
// that failed. Crashed listeners are not restarted.
type Supervisor struct {
	// Foreground is served on the calling goroutine (the REST listener).
	Foreground Endpoint
	// Background is served on a detached goroutine (the SOAP listener).
	Background Endpoint
	// TLSConfig enables HTTPS on both listeners when non-nil.
	TLSConfig *tls.Config
	// Logger receives lifecycle events.
	Logger *zap.Logger
	// OnListen, when set, is called with each listener's bound address.
	OnListen func(name string, addr net.Addr)
	// ShutdownTimeout bounds graceful shutdown. Zero means ShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Run serves both endpoints until ctx is cancelled.
//
// If the foreground listener fails, the error is logged and Run keeps
// waiting for ctx so the background listener continues in isolation; the
// foreground error is then returned.
func (s *Supervisor) Run(ctx context.Context) error {
	go func() {
		if err := s.serve(ctx, s.Background); err != nil {
			s.Logger.Error("listener stopped", zap.String("listener", s.Background.Name), zap.Error(err))
		}
	}()

	err := s.serve(ctx, s.Foreground)
	if err != nil {
		s.Logger.Error("listener stopped", zap.String("listener", s.Foreground.Name), zap.Error(err))
		<-ctx.Done()
	}
	return err
}

// serve binds e.Addr and serves it until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Supervisor) serve(ctx context.Context, e Endpoint) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", e.Addr)
	if err != nil {
		return fmt.Errorf("bind %s listener on %s: %w", e.Name, e.Addr, err)
	}
	if s.TLSConfig != nil {
		ln = tls.NewListener(ln, s.TLSConfig)
	}

	srv := &http.Server{
		Handler:           e.Handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.Logger.With(zap.String("listener", e.Name))),
	}

	s.Logger.Info("listener started",
		zap.String("listener", e.Name),
		zap.String("addr", ln.Addr().String()),
		zap.Bool("tls", s.TLSConfig != nil),
	)
	if s.OnListen != nil {
		s.OnListen(e.Name, ln.Addr())
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-gctx.Done()
		timeout := s.ShutdownTimeout
		if timeout == 0 {
			timeout = ShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.Logger.Info("listener shutting down", zap.String("listener", e.Name))
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}

// LoadTLSConfig loads the server key pair used by both listeners.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server TLS cert/key: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
