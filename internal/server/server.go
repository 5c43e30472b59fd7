// Package server exposes an authenticated HTTP status API next to the bot:
// host health, metrics, and an optional container listing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
)

// Server represents the HTTP status server
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	handlers   *Handlers
	auth       *AuthService
	limiter    *RateLimiter
	httpServer *http.Server
	logger     *zap.Logger
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	auth := NewAuthService(cfg.StatusAPIKey)

	s := &Server{
		cfg:      cfg,
		router:   router,
		handlers: NewHandlers(cfg, auth),
		auth:     auth,
		limiter:  NewRateLimiter(cfg.RateLimitRPS),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(s.cfg.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.limiter))
}

func (s *Server) setupRoutes() {
	// Health check (no auth)
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.auth))
	{
		api.GET("/info", s.handlers.GetInfo)

		api.GET("/metrics", s.handlers.GetAllMetrics)
		api.GET("/metrics/cpu", s.handlers.GetCPUMetrics)
		api.GET("/metrics/memory", s.handlers.GetMemoryMetrics)
		api.GET("/metrics/disk", s.handlers.GetDiskMetrics)

		api.GET("/processes", s.handlers.ListProcesses)

		api.GET("/docker/containers", s.handlers.ListContainers)

		api.POST("/auth/token", s.handlers.CreateToken)
	}
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.StatusAddr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down status server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("status server forced to shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("starting status server", zap.String("addr", s.cfg.StatusAddr()))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start status server: %w", err)
	}

	if err := s.handlers.Close(); err != nil {
		s.logger.Warn("error closing handlers", zap.Error(err))
	}

	s.logger.Info("status server stopped")
	return nil
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
