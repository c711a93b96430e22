// Package api serves the quiz flow and admin metrics over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/funnelquiz/internal/logger"
)

// RouterConfig wires handlers into the engine.
type RouterConfig struct {
	Sessions       *SessionHandler
	Admin          *AdminHandler
	Registry       *Registry
	Pinger         Pinger
	Log            *logger.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Log))
	router.Use(CORS(cfg.AllowedOrigins))

	router.GET("/health", Health(cfg.Pinger, cfg.Registry))

	group := router.Group("/api")
	if cfg.Sessions != nil {
		sessions := group.Group("/sessions")
		sessions.POST("", cfg.Sessions.Create)
		sessions.GET("/:id", cfg.Sessions.Get)
		sessions.POST("/:id/start", cfg.Sessions.Start)
		sessions.POST("/:id/answers", cfg.Sessions.Answer)
		sessions.POST("/:id/continue", cfg.Sessions.Continue)
		sessions.POST("/:id/contact", cfg.Sessions.Contact)
		sessions.POST("/:id/vsl", cfg.Sessions.VSL)
	}
	if cfg.Admin != nil {
		admin := group.Group("/admin")
		admin.GET("/metrics", cfg.Admin.Metrics)
		admin.GET("/dropoffs", cfg.Admin.Dropoffs)
		admin.GET("/sources", cfg.Admin.Sources)
		admin.GET("/cohorts", cfg.Admin.Cohorts)
		admin.GET("/leads", cfg.Admin.Leads)
	}
	return router
}

// CORS allows the configured origins. An empty list allows any origin
// without credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Length", "Accept", "Origin", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, "session_id", id)
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}

// Server runs the engine with graceful shutdown.
type Server struct {
	http *http.Server
}

// NewServer builds a server listening on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
