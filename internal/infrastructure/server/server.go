package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/fsagent/internal/api/http"
	"github.com/GriffinCanCode/fsagent/internal/api/middleware"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/config"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsagent/internal/providers"
	"github.com/GriffinCanCode/fsagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/fsagent/internal/service"
)

// shutdownTimeout bounds how long in-flight requests may finish on shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewRegistry builds the sandbox and registers every provider. The CLI uses
// it directly for one-shot calls.
func NewRegistry(cfg *config.Config, metrics *monitoring.Metrics, logger *logging.Logger) (*service.Registry, *filesystem.Sandbox, error) {
	sandbox, err := filesystem.New(cfg.Sandbox.Dir, filesystem.WithLogger(logger.Named("sandbox")))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sandbox: %w", err)
	}

	registry := service.NewRegistry()
	fsProvider := providers.NewFilesystem(sandbox,
		providers.WithMetrics(metrics),
		providers.WithLogger(logger.Named("filesystem")),
		providers.WithReadLimit(cfg.Sandbox.MaxReadBytes),
	)
	if err := registry.Register(fsProvider); err != nil {
		return nil, nil, fmt.Errorf("failed to register filesystem provider: %w", err)
	}
	if err := registry.Register(providers.NewSystem(sandbox.Root())); err != nil {
		return nil, nil, fmt.Errorf("failed to register system provider: %w", err)
	}

	return registry, sandbox, nil
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	metrics := monitoring.NewMetrics()
	registry, sandbox, err := NewRegistry(cfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing fsagent server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("sandbox", sandbox.Root()),
	)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("access")))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(registry, metrics, logger.Named("http"))

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Tools
	router.GET("/tools", handlers.ListTools)
	router.GET("/tools/:id", handlers.GetTool)
	router.POST("/tools/:id", handlers.ExecuteTool)

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		handler:  gzhttp.GzipHandler(router),
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Handler returns the root HTTP handler, gzip-compressing responses for
// clients that accept it.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the tool registry.
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shut down cleanly", zap.Error(err))
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close flushes buffered logs
func (s *Server) Close() error {
	_ = s.logger.Sync()
	return nil
}
