package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/memento"
	"github.com/soundprediction/memento/pkg/config"
	"github.com/soundprediction/memento/pkg/server/handlers"
	"github.com/soundprediction/memento/pkg/store"
	"github.com/soundprediction/memento/pkg/telemetry"
)

// Server exposes the knowledge graph over HTTP.
type Server struct {
	config *config.Config
	router *gin.Engine
	graph  memento.Memento
	store  store.Store
	logger *slog.Logger
	server *http.Server
}

// New creates a new server instance. The store is consulted only by
// readiness probes; graph traffic goes through the Memento.
func New(cfg *config.Config, graph memento.Memento, st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		graph:  graph,
		store:  st,
		logger: logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(requestIDMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.store)
	graphHandler := handlers.NewGraphHandler(s.graph, s.logger)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/entities", graphHandler.CreateEntities)
		v1.DELETE("/entities", graphHandler.DeleteEntities)
		v1.POST("/relations", graphHandler.CreateRelations)
		v1.DELETE("/relations", graphHandler.DeleteRelations)
		v1.POST("/observations", graphHandler.AddObservations)
		v1.DELETE("/observations", graphHandler.DeleteObservations)
		v1.GET("/graph", graphHandler.ReadGraph)
		v1.POST("/search", graphHandler.SearchNodes)
		v1.POST("/nodes/open", graphHandler.OpenNodes)
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags every request with an identifier that error
// telemetry records can be correlated against.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)

		ctx := telemetry.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
