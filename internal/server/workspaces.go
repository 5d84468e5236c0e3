package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhive/internal/models"
	"taskhive/internal/storage/sqlite"
)

type workspaceRequest struct {
	Name   *string        `json:"name"`
	Avatar *models.Avatar `json:"avatar"`
}

// handleListWorkspaces returns every workspace owned by the requester.
func (s *Server) handleListWorkspaces(c *gin.Context) {
	workspaces, err := s.store.WorkspacesByUser(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "", "Failed to fetch workspaces")
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

// handleWorkspacesCount returns how many workspaces the requester owns.
func (s *Server) handleWorkspacesCount(c *gin.Context) {
	count, err := s.store.CountWorkspaces(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "", "Failed to get workspaces count")
		return
	}
	c.JSON(http.StatusOK, count)
}

// handleGetWorkspace fetches one owned workspace.
func (s *Server) handleGetWorkspace(c *gin.Context) {
	id, ok := parseUUID(c, "id", "workspace ID")
	if !ok {
		return
	}

	workspace, err := s.store.Workspace(c.Request.Context(), id, userID(c))
	if err != nil {
		s.fail(c, err, "Workspace not found", "Failed to get workspace")
		return
	}
	c.JSON(http.StatusOK, workspace)
}

// handleCreateWorkspace creates a workspace owned by the requester.
func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	w := models.Workspace{}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Avatar != nil {
		w.Avatar = *req.Avatar
	}

	workspace, err := s.store.CreateWorkspace(c.Request.Context(), userID(c), w)
	if err != nil {
		s.fail(c, err, "", "Failed to create workspace")
		return
	}
	c.JSON(http.StatusCreated, workspace)
}

// handleUpdateWorkspace applies a partial update to an owned workspace.
func (s *Server) handleUpdateWorkspace(c *gin.Context) {
	id, ok := parseUUID(c, "id", "workspace ID")
	if !ok {
		return
	}

	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	workspace, err := s.store.UpdateWorkspace(c.Request.Context(), id, userID(c), sqlite.WorkspaceUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		s.fail(c, err, "Workspace not found", "Failed to update workspace")
		return
	}
	c.JSON(http.StatusOK, workspace)
}

// handleDeleteWorkspace removes an owned workspace and everything under it.
func (s *Server) handleDeleteWorkspace(c *gin.Context) {
	id, ok := parseUUID(c, "id", "workspace ID")
	if !ok {
		return
	}

	if err := s.store.DeleteWorkspace(c.Request.Context(), id, userID(c)); err != nil {
		s.fail(c, err, "Workspace not found", "Failed to delete workspace")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted successfully"})
}
