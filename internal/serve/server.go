// Package serve provides the schedviz HTTP API: single-algorithm runs,
// six-algorithm comparisons and Prometheus metrics.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

const (
	defaultAddr           = ":7338"
	defaultRequestTimeout = 10 * time.Second
	shutdownTimeout       = 5 * time.Second
	bodyLimit             = "1M"
)

// Config holds server configuration.
type Config struct {
	Addr string
	// Quantum is used when a request leaves quantum unset.
	Quantum int
	// Runner serves /compare. A nil runner gets an uncached one.
	Runner *compare.Runner
	// MaxHorizon bounds max(arrival) + Σburst of a request's processes.
	MaxHorizon int
	// RequestTimeout is the deadline for every /api/v1 request.
	RequestTimeout time.Duration
}

// Server is the HTTP surface over the scheduler and comparator.
type Server struct {
	addr       string
	quantum    int
	maxHorizon int
	timeout    time.Duration
	runner     *compare.Runner
	engine     *echo.Echo
	metrics    *Metrics
}

// New builds a server and registers its routes and collectors.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Quantum < 1 {
		cfg.Quantum = sched.DefaultQuantum
	}
	if cfg.Runner == nil {
		cfg.Runner = compare.NewRunner(0)
	}
	if cfg.MaxHorizon < 1 {
		cfg.MaxHorizon = workload.DefaultMaxHorizon
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	m, err := NewMetrics(cfg.Runner)
	if err != nil {
		return nil, fmt.Errorf("failed to register metric collectors: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	s := &Server{
		addr:       cfg.Addr,
		quantum:    cfg.Quantum,
		maxHorizon: cfg.MaxHorizon,
		timeout:    cfg.RequestTimeout,
		runner:     cfg.Runner,
		engine:     e,
		metrics:    m,
	}
	s.SetupRoutes(e)
	return s, nil
}

// SetupRoutes registers every endpoint on engine.
func (s *Server) SetupRoutes(engine *echo.Echo) {
	engine.Use(middleware.Recover())
	engine.Use(requestLogger)
	engine.Use(middleware.BodyLimit(bodyLimit))

	engine.GET("/health", s.HealthCheck)
	engine.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	apiV1 := engine.Group("/api/v1", middleware.ContextTimeout(s.timeout))
	apiV1.GET("/algorithms", s.ListAlgorithms)
	apiV1.POST("/run", s.Run)
	apiV1.POST("/compare", s.Compare)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("starting schedviz server", "addr", s.addr)
	slog.Info("available endpoints",
		"endpoints", []string{
			"GET /health",
			"GET /metrics",
			"GET /api/v1/algorithms",
			"POST /api/v1/run",
			"POST /api/v1/compare",
		})

	errCh := make(chan error, 1)
	go func() {
		if err := s.engine.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.engine.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
