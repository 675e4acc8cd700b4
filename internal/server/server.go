// Package server exposes extraction over HTTP for scripts and browser extensions.
package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/extractor/facebook"
	"github.com/rs/zerolog"
)

// ExtractRequest is the body of POST /api/extract
type ExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// Server handles extraction requests one at a time
type Server struct {
	registry *extractor.Registry
	logger   zerolog.Logger
	engine   *gin.Engine

	// extraction is sequential; concurrent requests queue here
	mu sync.Mutex
}

// New creates a server backed by registry
func New(registry *extractor.Registry, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		registry: registry,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.POST("/api/extract", s.handleExtract)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until the server fails
func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("listening")
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: url is required"})
		return
	}

	ext, err := s.registry.Match(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	result, err := ext.Extract(c.Request.Context(), req.URL)
	s.mu.Unlock()

	if err != nil {
		failed := extractor.NewDownloadResult()
		failed.Message = err.Error()

		status := http.StatusBadGateway
		var exhausted *facebook.ExhaustedRetriesError
		if !errors.As(err, &exhausted) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, failed)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
