package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lexscribe/internal/api/middleware"
	v1routes "lexscribe/internal/api/v1/routes"
	"lexscribe/internal/app/metrics"
)

// maxMultipartMemory is the part of an upload kept in memory, the rest spills to disk
const maxMultipartMemory = 32 << 20

const healthTimeout = 2 * time.Second

// Config represents API server configuration
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
	CORSOrigins  []string
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	config Config,
	services *v1routes.ServiceContainer,
	guards v1routes.Guards,
	store Pinger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.DebugMode)
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(
		middleware.RequestID(),
		middleware.StructuredLogging(logger),
		middleware.ErrorHandler(logger),
		middleware.Metrics(m),
		middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins...)),
	)

	router.GET("/health", health(store, logger))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	v1routes.RegisterRoutes(router, services, guards)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start starts the API server. Listen failures are reported on the returned channel.
func (s *Server) Start() <-chan error {
	s.logger.Info("Starting API server",
		zap.String("host", s.config.Host),
		zap.String("port", s.config.Port),
		zap.String("environment", s.config.Environment),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Failed to start server", zap.Error(err))
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// health reports 503 while the record store is unreachable
func health(store Pinger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Unix(),
		})
	}
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
