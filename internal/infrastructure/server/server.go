package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	apihttp "github.com/GriffinCanCode/AgentOS/workspace/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/providers/export"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/providers/llm"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/providers/sources"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	controller *workspace.Controller
	sessions   *session.Manager
	hub        *ws.Hub
	store      *storeHandle
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing Workspace Server",
		zap.String("addr", cfg.Addr()),
		zap.String("storage", cfg.Storage.DSN),
		zap.String("model_endpoint", cfg.Model.Endpoint),
	)

	lang, err := language.Parse(cfg.Locale.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale.Language, err)
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("workspace", logger.Logger)
	hub := ws.NewHub(logger, metrics)
	store := newStoreHandle(cfg.Storage.DSN, logger)

	modelCfg := llm.DefaultConfig(cfg.Model.Endpoint)
	modelCfg.Timeout = cfg.Model.Timeout
	modelCfg.RPS = cfg.Model.RequestsPerSecond
	completer := llm.New(modelCfg, logger.Named("llm"))

	sessions := session.NewManager(store, completer, hub, nil, logger.Named("session"))
	exporter := export.New(cfg.Export.Dir, logger.Named("export"))

	controller := workspace.New(workspace.Deps{
		Open:     store.Open,
		View:     hub,
		Session:  sessions,
		Exporter: exporter,
		Fetcher:  newFetcher(cfg.Seed, cfg.Model.Timeout),
		Logger:   logger.Named("workspace"),
		Metrics:  metrics,
		Language: lang,
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Workspace: controller,
		Search:    store,
		Downloads: exporter,
		Chat:      sessions,
		Stream:    hub,
		Logger:    logger,
	})
	handlers.Routes(router)
	router.GET("/stream", hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		controller: controller,
		sessions:   sessions,
		hub:        hub,
		store:      store,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// newFetcher prefers the HTTP source when a base URL is configured
func newFetcher(cfg config.SeedConfig, timeout time.Duration) workspace.SourceFetcher {
	if cfg.BaseURL != "" {
		return sources.NewHTTPFetcher(cfg.BaseURL, timeout)
	}
	return sources.NewDirFetcher(cfg.Dir)
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Controller exposes the workspace controller
func (s *Server) Controller() *workspace.Controller {
	return s.controller
}

// Bootstrap opens storage and seeds client sources.
// Requests are served meanwhile and answered 503 until it completes.
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.controller.Bootstrap(ctx)
}

// Run serves HTTP until ctx is cancelled, bootstrapping in the background
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go func() {
		if err := s.Bootstrap(ctx); err != nil {
			s.logger.Error("Bootstrap failed", zap.Error(err))
		}
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.hub.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close storage", zap.Error(err))
		return fmt.Errorf("failed to close storage: %w", err)
	}

	stats := s.sessions.Stats()
	s.logger.Info("Session totals",
		zap.Uint64("sent", stats.Sent),
		zap.Uint64("failed", stats.Failed))

	_ = s.logger.Sync()
	return nil
}
