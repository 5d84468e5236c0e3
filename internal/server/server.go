package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhive/internal/auth"
	"taskhive/internal/models"
	"taskhive/internal/storage/sqlite"
)

// Server provides the HTTP handlers for the task management backend.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	tokens *auth.Manager
	logger *slog.Logger
}

// errorResponse is the error envelope shared by every endpoint. Errors
// holds itemized validation messages when applicable.
type errorResponse struct {
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, tokens *auth.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter))

	srv := &Server{
		engine: router,
		store:  store,
		tokens: tokens,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all resource groups. Everything except register
// and login sits behind the bearer token middleware.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/healthz", s.handleHealth)

	users := api.Group("/users")
	{
		users.POST("/register", s.handleRegister)
		users.POST("/login", s.handleLogin)
		users.GET("", s.requireAuth, s.handleCurrentUser)
		users.POST("/validate", s.requireAuth, s.handleValidateToken)
		users.GET("/:id", s.requireAuth, s.handleUserByID)
	}

	workspaces := api.Group("/workspaces", s.requireAuth)
	{
		workspaces.GET("", s.handleListWorkspaces)
		workspaces.GET("/count", s.handleWorkspacesCount)
		workspaces.GET("/:id", s.handleGetWorkspace)
		workspaces.POST("", s.handleCreateWorkspace)
		workspaces.PATCH("/:id", s.handleUpdateWorkspace)
		workspaces.DELETE("/:id", s.handleDeleteWorkspace)
	}

	lists := api.Group("/lists", s.requireAuth)
	{
		lists.GET("/latest", s.handleLatestList)
		lists.GET("", s.handleLists)
		// :id is a workspace id here and a list id everywhere else;
		// gin allows only one wildcard name per position.
		lists.GET("/:id", s.handleListsByWorkspace)
		lists.GET("/:id/workspace/:workspaceId", s.handleListInWorkspace)
		lists.POST("", s.handleCreateList)
		lists.PATCH("/:id", s.handleUpdateList)
		lists.DELETE("/:id", s.handleDeleteList)
	}

	tasks := api.Group("/tasks", s.requireAuth)
	{
		tasks.POST("", s.handleCreateTask)
		tasks.GET("/count", s.handleTasksCount)
		tasks.GET("/priority", s.handleTasksPriority)
		// :id is a list id for the two collection routes below.
		tasks.GET("/:id", s.handleTasksByList)
		tasks.GET("/:id/count", s.handleListTasksCount)
		tasks.PATCH("/bulk", s.handleUpdateManyTasks)
		tasks.PATCH("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
		tasks.DELETE("/:id/bulk", s.handleDeleteManyTasks)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const userIDKey = "userID"

// requireAuth validates the bearer token and stashes the requester's
// user id in the request context.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}

	userID, err := s.tokens.Verify(strings.TrimPrefix(header, prefix))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// userID returns the authenticated requester's id. Only valid behind
// requireAuth.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// parseUUID reads a path parameter and rejects malformed identifiers
// before any store lookup happens.
func parseUUID(c *gin.Context, param, label string) (string, bool) {
	raw := c.Param(param)
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid " + label + " format"})
		return "", false
	}
	return raw, true
}

// fail maps a store error onto the error taxonomy: validation → 400,
// not-found (or not-yours) → 404, list ownership mismatch → 403,
// anything else → 500 with the raw detail.
func (s *Server) fail(c *gin.Context, err error, notFoundMsg, failMsg string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: verr.Errors})
	case errors.Is(err, sqlite.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: notFoundMsg})
	case errors.Is(err, sqlite.ErrAccessDenied):
		c.JSON(http.StatusForbidden, errorResponse{Message: "Access denied to this list"})
	case errors.Is(err, sqlite.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Email already in use"})
	default:
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: failMsg, Error: err.Error()})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Message: message})
}
