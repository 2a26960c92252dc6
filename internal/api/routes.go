// Package api provides the REST API server.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/ticker-sentiment/internal/report"
	"github.com/user/ticker-sentiment/pkg/config"
)

// Runner runs the sentiment pipeline for a ticker.
type Runner interface {
	Run(ctx context.Context, ticker string) (*report.Report, error)
}

// Server represents the API server.
type Server struct {
	router   *gin.Engine
	pipeline Runner
	config   *config.Config
}

// NewServer creates a new API server.
func NewServer(pipeline Runner, cfg *config.Config) *Server {
	s := &Server{
		pipeline: pipeline,
		config:   cfg,
	}

	s.setupRouter()
	return s
}

// setupRouter sets up the Gin router with all routes.
func (s *Server) setupRouter() {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Enable CORS
	r.Use(corsMiddleware())

	// API v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/analyze", s.handleAnalyze)
	}

	s.router = r
}

// Router returns the Gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// corsMiddleware adds CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
