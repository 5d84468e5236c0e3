package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createListRequest struct {
	Name        string `json:"name"`
	WorkspaceID string `json:"workspaceId"`
}

type updateListRequest struct {
	Name *string `json:"name"`
}

// handleLatestList returns the id of the requester's most recently
// created list, or null when there is none.
func (s *Server) handleLatestList(c *gin.Context) {
	id, err := s.store.LatestListID(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "", "Failed to fetch latest list ID")
		return
	}
	if id == "" {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, id)
}

// handleLists returns every list owned by the requester.
func (s *Server) handleLists(c *gin.Context) {
	lists, err := s.store.ListsByUser(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "", "Failed to fetch lists")
		return
	}
	c.JSON(http.StatusOK, lists)
}

// handleListsByWorkspace returns the lists of an owned workspace. The
// :id path parameter is the workspace id.
func (s *Server) handleListsByWorkspace(c *gin.Context) {
	workspaceID, ok := parseUUID(c, "id", "workspace ID")
	if !ok {
		return
	}

	lists, err := s.store.ListsByWorkspace(c.Request.Context(), userID(c), workspaceID)
	if err != nil {
		s.fail(c, err, "Workspace not found", "Failed to fetch lists")
		return
	}
	c.JSON(http.StatusOK, lists)
}

// handleListInWorkspace reports whether an owned list belongs to the
// given workspace.
func (s *Server) handleListInWorkspace(c *gin.Context) {
	listID, ok := parseUUID(c, "id", "list ID")
	if !ok {
		return
	}
	workspaceID, ok := parseUUID(c, "workspaceId", "workspace ID")
	if !ok {
		return
	}

	member, err := s.store.ListInWorkspace(c.Request.Context(), listID, workspaceID, userID(c))
	if err != nil {
		s.fail(c, err, "List not found", "Failed to check list")
		return
	}
	c.JSON(http.StatusOK, member)
}

// handleCreateList creates a list under an owned workspace.
func (s *Server) handleCreateList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if req.WorkspaceID != "" {
		if _, err := uuid.Parse(req.WorkspaceID); err != nil {
			badRequest(c, "Invalid workspace ID format")
			return
		}
	}

	list, err := s.store.CreateList(c.Request.Context(), userID(c), req.WorkspaceID, req.Name)
	if err != nil {
		s.fail(c, err, "Workspace not found", "Failed to create list")
		return
	}
	c.JSON(http.StatusCreated, list)
}

// handleUpdateList renames an owned list.
func (s *Server) handleUpdateList(c *gin.Context) {
	id, ok := parseUUID(c, "id", "list ID")
	if !ok {
		return
	}

	var req updateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	list, err := s.store.UpdateList(c.Request.Context(), id, userID(c), req.Name)
	if err != nil {
		s.fail(c, err, "List not found", "Failed to update list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleDeleteList removes a list and its tasks. A list whose workspace
// belongs to someone else yields 403 rather than 404.
func (s *Server) handleDeleteList(c *gin.Context) {
	id, ok := parseUUID(c, "id", "list ID")
	if !ok {
		return
	}

	if err := s.store.DeleteList(c.Request.Context(), id, userID(c)); err != nil {
		s.fail(c, err, "List not found", "Failed to delete list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List deleted successfully"})
}
