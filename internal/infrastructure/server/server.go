package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/bundlekit/internal/api/http"
	"github.com/GriffinCanCode/bundlekit/internal/api/middleware"
	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
	"github.com/GriffinCanCode/bundlekit/internal/domain/registry"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/config"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/monitoring"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	manager *registry.Manager
	store   *registry.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance. Persisted snapshots are restored and
// the manifest directory is seeded before the server accepts requests.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing bundle registry server",
		zap.String("addr", cfg.Address()),
		zap.Bool("store_enabled", cfg.Store.Enabled),
		zap.String("manifest_dir", cfg.Manifests.Dir),
	)

	metrics := monitoring.NewMetrics()

	var store *registry.Store
	if cfg.Store.Enabled {
		store, err = registry.NewStore(cfg.Store.Dir, cfg.Store.CacheSize)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		logger.Info("Snapshot store opened", zap.String("dir", cfg.Store.Dir))
	}

	manager := registry.NewManager(registry.Options{
		Logger:  logger.Component("registry"),
		Metrics: metrics,
		Store:   store,
		Parser:  manifest.NewParser(logger.Component("manifest")),
	})

	if store != nil {
		restored, err := manager.Restore(ctx)
		if err != nil {
			logger.Warn("Failed to restore snapshots", zap.Error(err))
		} else {
			logger.Info("Snapshots restored", zap.Int("bundles", restored))
		}
	}

	if cfg.Manifests.Dir != "" {
		seeder := registry.NewSeeder(manager, cfg.Manifests.Dir, cfg.Manifests.Pattern)
		result, err := seeder.Seed(ctx)
		if err != nil {
			logger.Warn("Failed to seed manifests", zap.Error(err))
		} else {
			logger.Info("Manifests seeded",
				zap.Int("loaded", result.Loaded),
				zap.Int("failed", result.Failed),
			)
		}
	}

	router := newRouter(cfg, logger, metrics)
	apihttp.NewHandlers(manager, metrics, logger.Component("api")).Register(router)

	logger.Info("Server initialized successfully", zap.Int("bundles", manager.Count()))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		manager: manager,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

func newRouter(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}
	return router
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the bundle registry served by s
func (s *Server) Manager() *registry.Manager {
	return s.manager
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	if s.store != nil {
		s.store.Close()
		s.logger.Info("Closed snapshot store")
	}

	s.logger.Close()
	return err
}
