package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"insighthub/internal/engine"
	"insighthub/internal/models"
	"insighthub/internal/service"
	"insighthub/internal/storage"
)

// Options tune the optional parts of the HTTP server.
type Options struct {
	// StaticDir holds a built frontend to serve next to the API.
	StaticDir string
	// JWTSecret enables bearer authentication on /api when set.
	JWTSecret string
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
}

// Server provides HTTP handlers for the InsightHub backend.
type Server struct {
	engine   *gin.Engine
	store    storage.Store
	projects *service.Projects
	goals    *service.Goals
	logger   *slog.Logger
	opts     Options
}

// New constructs the HTTP server with routes and middleware configured.
func New(store storage.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))
	router.Use(cors(opts.AllowedOrigins))

	srv := &Server{
		engine:   router,
		store:    store,
		projects: service.NewProjects(store, engine.New(store.NewID)),
		goals:    service.NewGoals(store),
		logger:   logger,
		opts:     opts,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	if s.opts.JWTSecret != "" {
		api.Use(s.requireToken(s.opts.JWTSecret))
	}
	{
		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET(":id", s.handleGetProject)
			projects.PUT(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.POST(":id/tasks", s.handleCreateTask)
			projects.PUT(":id/tasks/:taskId", s.handleUpdateTask)
			projects.DELETE(":id/tasks/:taskId", s.handleDeleteTask)
		}

		goals := api.Group("/goals")
		{
			goals.GET("", s.handleListGoals)
			goals.POST("", s.handleCreateGoal)
			goals.DELETE("/completed/all", s.handleDeleteCompletedGoals)
			goals.GET(":id", s.handleGetGoal)
			goals.PUT(":id", s.handleUpdateGoal)
			goals.PATCH(":id/toggle", s.handleToggleGoal)
			goals.DELETE(":id", s.handleDeleteGoal)
		}
	}

	s.mountStatic()
}

// handleHealth reports whether the store answers a ping.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID reads a non-empty path parameter.
func pathID(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return "", false
	}
	return id, true
}

// statusFor maps a domain error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case models.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// fail responds with the status derived from err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
