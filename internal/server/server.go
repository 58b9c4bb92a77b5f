// Package server exposes the page analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagelens/pagelens/internal/platform/logger"
)

// Server serves the analyze API over an injected Runner, so handlers stay
// testable without vendor calls or page fetches.
type Server struct {
	runner  Runner
	version string
	log     *slog.Logger
}

// New creates a Server. A nil log falls back to slog.Default().
func New(runner Runner, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{runner: runner, version: version, log: log}
}

// HealthResponse is the healthz payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Router builds the gin engine with logging and recovery middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.injectLogger(), s.requestLog(), s.recovery())

	r.GET("/healthz", s.healthz)
	api := r.Group("/api")
	api.POST("/analyze", s.analyze)
	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// One analyze call covers a page fetch plus a vendor call, so the
		// write timeout sits well above the pipeline budget.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "pagelens", Version: s.version})
}

// injectLogger threads the server logger through the request context so
// the runner and the engine packages log through one handler.
func (s *Server) injectLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithContext(c.Request.Context(), s.log)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			s.log.Error("request failed", attrs...)
		case status >= 400:
			s.log.Warn("request error", attrs...)
		default:
			s.log.Info("request", attrs...)
		}
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
