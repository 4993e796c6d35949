// ABOUTME: HTTP surface exposing the advisor tools as JSON endpoints
// ABOUTME: Mirrors the MCP tool list so non-MCP clients can call the same tools
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/harper/podcast-wisdom/internal/storage"
	"github.com/sirupsen/logrus"
)

// Server routes HTTP requests to the advisor service
type Server struct {
	service *advisor.Service
	stats   storage.Reader
	logger  logrus.FieldLogger
}

// NewServer creates a Server. stats may be nil, which disables GET /stats.
func NewServer(service *advisor.Service, stats storage.Reader, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{service: service, stats: stats, logger: logger}
}

// SetupRouter builds the gin engine
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	r.GET("/healthz", s.Health)
	r.GET("/tools", s.ListTools)
	r.POST("/tools/:name", s.CallTool)
	if s.stats != nil {
		r.GET("/stats", s.Stats)
	}

	return r
}

// ListenAndServe runs the router until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListTools(c *gin.Context) {
	defs := advisor.Definitions()
	tools := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, gin.H{
			"name":         def.Name,
			"description":  def.Description,
			"input_schema": def.InputSchema(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// CallTool accepts a JSON object of tool arguments. An empty body means no arguments.
func (s *Server) CallTool(c *gin.Context) {
	name := c.Param("name")

	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	text, err := s.service.Call(c.Request.Context(), name, args)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.WithError(err).WithField("tool", name).Error("tool call failed")
		}
		msg := err.Error()
		if status == http.StatusNotFound {
			msg = "Unknown tool: " + name
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) Stats(c *gin.Context) {
	stats, err := s.stats.Stats(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("stats failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatusFor maps advisor errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, advisor.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, advisor.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
