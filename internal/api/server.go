package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/rundown-core/internal/asrun"
	"github.com/nerrad567/rundown-core/internal/automation"
	"github.com/nerrad567/rundown-core/internal/infrastructure/config"
	"github.com/nerrad567/rundown-core/internal/infrastructure/logging"
	"github.com/nerrad567/rundown-core/internal/rundown"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by infrastructure components whose state is
// reported by the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Runner   *automation.Runner

	// Shows and AsRun are optional; their endpoints answer 503 without them.
	Shows rundown.Repository
	AsRun asrun.Repository

	// Hub is shared with the dispatcher. A hub is created when nil.
	Hub *Hub

	// Checks are reported by GET /health, keyed by component name.
	Checks  map[string]HealthChecker
	Version string
}

// Server is the HTTP API server for Rundown Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Run().
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	secCfg  config.SecurityConfig
	logger  *logging.Logger
	runner  *automation.Runner
	shows   rundown.Repository
	asRun   asrun.Repository
	checks  map[string]HealthChecker
	version string
	server  *http.Server
	hub     *Hub
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Run() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		secCfg:  deps.Security,
		logger:  deps.Logger,
		runner:  deps.Runner,
		shows:   deps.Shows,
		asRun:   deps.AsRun,
		checks:  deps.Checks,
		version: deps.Version,
		hub:     deps.Hub,
	}
	if s.hub == nil {
		s.hub = NewHub(deps.WS, deps.Logger)
	}
	s.hub.SetSession(s.runner)
	return s, nil
}

// Hub returns the WebSocket hub, for wiring into the dispatcher.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully. The
// hub is closed on return so WebSocket pumps exit.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		s.hub.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.hub.closeAll()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
