// Package server exposes search and analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"GoStem/internal/analysis"
)

// Config holds the HTTP server settings.
type Config struct {
	Host            string
	Port            int
	EnableCORS      bool
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxLimit caps the limit parameter of search requests.
	MaxLimit int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxLimit:        500,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server is the HTTP front end.
type Server struct {
	cfg       Config
	mgr       *IndexManager
	registry  *analysis.Registry
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	engine    *gin.Engine
	startTime time.Time
}

// New builds the router. gatherer backs /metrics; nil means the default
// Prometheus registry.
func New(cfg Config, mgr *IndexManager, registry *analysis.Registry, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = analysis.NewRegistry(analysis.Options{})
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultConfig().MaxLimit
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		mgr:       mgr,
		registry:  registry,
		gatherer:  gatherer,
		logger:    logger,
		engine:    gin.New(),
		startTime: time.Now(),
	}
	s.engine.Use(gin.Recovery(), requestLogger(logger))
	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		s.engine.Use(cors.New(corsConfig))
	}
	s.engine.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handlePage)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ready", s.handleReady)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		api.GET("/search", s.handleSearch)
		api.GET("/analyze", s.handleAnalyze)
		api.GET("/index", s.handleIndexInfo)
		api.POST("/reload", s.handleReload)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
