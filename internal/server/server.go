// Package server exposes the fortune service over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mystique/internal/config"
	"mystique/internal/fortune"
	"mystique/internal/logging"
	"mystique/internal/observability"
	"mystique/internal/session"
)

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	fortune *fortune.Service
	store   *session.Store
	metrics *observability.MetricsCollector
	logger  logging.Logger
}

// Options configures the server.
type Options struct {
	Config  config.ServerConfig
	Fortune *fortune.Service
	Store   *session.Store
	Metrics *observability.MetricsCollector
	Logger  logging.Logger
	Debug   bool
}

// New builds the server and registers all routes.
func New(opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(opts.Config.AllowedOrigins) == 1 && opts.Config.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.Config.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:  engine,
		fortune: opts.Fortune,
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  logging.OrNop(opts.Logger),
	}

	engine.POST("/fortune", s.handleFortune)
	engine.POST("/analyze-image", s.handleAnalyzeImage)
	engine.GET("/health", s.handleHealth)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	readTimeout := opts.Config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := opts.Config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}
	s.http = &http.Server{
		Addr:         opts.Config.Addr(),
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until the listener fails or Shutdown runs.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
