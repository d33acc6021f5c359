// Package server assembles the dashboard gateway: a gin engine in front of
// the store, serving slice state, CRUD and reports as JSON.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/handler"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/middleware"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/router"
)

// ShutdownTimeout bounds how long in-flight requests may finish after Run's
// context is canceled.
const ShutdownTimeout = 30 * time.Second

// Dependencies are the application services the gateway exposes.
type Dependencies struct {
	Sessions    handler.SessionService
	Collections handler.Collections
	Resetter    handler.Resetter
	Reports     handler.Reports
	Metrics     *metrics.Recorder
	Tracer      trace.TracerProvider
	Upstream    string
}

// Server is the dashboard gateway.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// New builds the gateway.
func New(cfg *config.Config, deps Dependencies, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		srv: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           NewEngine(cfg, deps, log),
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		log: log.Named("gateway"),
	}
}

// NewEngine builds the gin engine with all middleware and routes.
func NewEngine(cfg *config.Config, deps Dependencies, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(deps.Tracer),
		middleware.Metrics(deps.Metrics),
		middleware.BodyLimit(middleware.DefaultBodyLimit),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound,
			"Route not found", logger.GetRequestID(c.Request.Context())))
	})

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(deps.Upstream))
	r.Register(handler.NewSessionHandler(deps.Sessions, deps.Resetter))
	r.Register(handler.NewResourceHandler(deps.Collections))
	r.Register(handler.NewReportHandler(deps.Reports))
	r.Setup()

	return engine
}

// Handler returns the gateway's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Gateway starting", zap.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway forced to shut down: %w", err)
	}
	s.log.Info("Gateway exited gracefully")
	return <-errCh
}
