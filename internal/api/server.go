package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/lightguard-core/internal/journal"
	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// StatusSource provides the most recent control output.
type StatusSource interface {
	Latest() (control.Output, bool)
}

// OverrideSink accepts the driver's manual beam request.
type OverrideSink interface {
	SetManual(mode *lighting.BeamMode)
	Manual() *lighting.BeamMode
}

// FaultStore lists journalled faults and transitions.
type FaultStore interface {
	List(ctx context.Context, filter journal.Filter) (*journal.ListResult, error)
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	Status   StatusSource
	Override OverrideSink
	Faults   FaultStore // optional: /faults answers 503 without it

	// Checks are reported by /health, keyed by component name.
	Checks map[string]HealthChecker

	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the diagnostics and override API for LightGuard Core.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	status   StatusSource
	override OverrideSink
	faults   FaultStore
	checks   map[string]HealthChecker
	version  string

	server      *http.Server
	listener    net.Listener
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (logger, status source, override sink)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Status == nil {
		return nil, fmt.Errorf("status source is required")
	}
	if deps.Override == nil {
		return nil, fmt.Errorf("override sink is required")
	}

	s := &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		status:   deps.Status,
		override: deps.Override,
		faults:   deps.Faults,
		checks:   deps.Checks,
		version:  deps.Version,
	}
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}
	return s, nil
}

// Hub returns the WebSocket hub, nil before Start unless one was injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves in a background goroutine.
//
// Parameters:
//   - ctx: Parent context for the hub and background goroutines
//
// Returns:
//   - error: If the address cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	s.hub.SetSnapshot(s.snapshot)
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("binding API listener: %w", err)
	}
	s.listener = ln

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "address", ln.Addr().String(), "cert", s.cfg.TLS.CertFile)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, useful when Port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
