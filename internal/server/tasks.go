package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskhive/internal/models"
	"taskhive/internal/storage/sqlite"
)

type taskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ListID      *string    `json:"listId"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	DueDate     *time.Time `json:"dueDate"`
}

type bulkUpdateRequest struct {
	TasksID       []string    `json:"tasksId"`
	UpdatedFields taskRequest `json:"updatedFields"`
}

// update extracts the mutable fields. Owner and list references are
// dropped on purpose: they never change through an update.
func (r taskRequest) update() sqlite.TaskUpdate {
	return sqlite.TaskUpdate{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		DueDate:     r.DueDate,
	}
}

func (r taskRequest) empty() bool {
	return r.Name == nil && r.Description == nil && r.Status == nil && r.Priority == nil &&
		r.StartDate == nil && r.EndDate == nil && r.DueDate == nil
}

// handleCreateTask creates a task under an owned list.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if req.ListID == nil || req.Name == nil || *req.Name == "" {
		badRequest(c, "listId and name are required fields")
		return
	}
	if _, err := uuid.Parse(*req.ListID); err != nil {
		badRequest(c, "Invalid listId format")
		return
	}

	t := models.Task{
		ListID:    *req.ListID,
		Name:      *req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		DueDate:   req.DueDate,
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}

	task, err := s.store.CreateTask(c.Request.Context(), userID(c), t)
	if err != nil {
		s.fail(c, err, "List not found or access denied", "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// handleTasksByList runs the filtered, sorted, paginated task query for
// an owned list. The :id path parameter is the list id. The total match
// count is exposed in the X-Total-Count header.
func (s *Server) handleTasksByList(c *gin.Context) {
	listID, ok := parseUUID(c, "id", "listId")
	if !ok {
		return
	}

	uid := userID(c)
	if _, err := s.store.List(c.Request.Context(), listID, uid); err != nil {
		s.fail(c, err, "List not found or access denied", "Failed to fetch tasks")
		return
	}

	query := sqlite.TaskQuery{
		ListID:    listID,
		UserID:    uid,
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		CreatedAt: c.Query("createdAt"),
		DueDate:   c.Query("dueDate"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
	}

	tasks, total, err := s.store.QueryTasks(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err, "List not found or access denied", "Failed to fetch tasks")
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, tasks)
}

// handleTasksCount returns the requester's status distribution across
// all lists.
func (s *Server) handleTasksCount(c *gin.Context) {
	counts, err := s.store.StatusCounts(c.Request.Context(), userID(c), "")
	if err != nil {
		s.fail(c, err, "", "Failed to count tasks")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// handleListTasksCount returns the status distribution for one list.
// The :id path parameter is the list id.
func (s *Server) handleListTasksCount(c *gin.Context) {
	listID, ok := parseUUID(c, "id", "listId")
	if !ok {
		return
	}

	counts, err := s.store.StatusCounts(c.Request.Context(), userID(c), listID)
	if err != nil {
		s.fail(c, err, "", "Failed to count tasks")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// handleTasksPriority returns the requester's priority distribution.
func (s *Server) handleTasksPriority(c *gin.Context) {
	counts, err := s.store.PriorityCounts(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "", "Failed to count task priorities")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// handleUpdateTask applies a partial update to an owned task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseUUID(c, "id", "task ID")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, userID(c), req.update())
	if err != nil {
		s.fail(c, err, "Task not found or access denied", "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleUpdateManyTasks applies one set of changes to a batch of owned
// tasks. A single malformed id rejects the whole batch.
func (s *Server) handleUpdateManyTasks(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if len(req.TasksID) == 0 {
		badRequest(c, "tasksId must be a non-empty array")
		return
	}
	if req.UpdatedFields.empty() {
		badRequest(c, "updatedFields cannot be empty")
		return
	}
	if invalid := invalidUUIDs(req.TasksID); len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid task ID format(s) found", Errors: invalid})
		return
	}

	modified, err := s.store.UpdateTasks(c.Request.Context(), userID(c), req.TasksID, req.UpdatedFields.update())
	if err != nil {
		s.fail(c, err, "", "Failed to update tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("%d tasks updated successfully", modified),
		"modifiedCount": modified,
	})
}

// handleDeleteTask removes one owned task and returns it.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseUUID(c, "id", "task ID")
	if !ok {
		return
	}

	task, err := s.store.DeleteTask(c.Request.Context(), id, userID(c))
	if err != nil {
		s.fail(c, err, "Task not found or access denied", "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleDeleteManyTasks removes a batch of owned tasks from a list. The
// :id path parameter is the list id. A single malformed id rejects the
// whole batch before anything is deleted.
func (s *Server) handleDeleteManyTasks(c *gin.Context) {
	listID, ok := parseUUID(c, "id", "list ID")
	if !ok {
		return
	}

	var taskIDs []string
	if err := c.ShouldBindJSON(&taskIDs); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if len(taskIDs) == 0 {
		badRequest(c, "Task IDs must be a non-empty array")
		return
	}
	if invalid := invalidUUIDs(taskIDs); len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid task ID format(s) found", Errors: invalid})
		return
	}

	deleted, err := s.store.DeleteTasks(c.Request.Context(), userID(c), listID, taskIDs)
	if err != nil {
		s.fail(c, err, "", "Failed to delete tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%d tasks deleted successfully", deleted),
		"deletedCount": deleted,
	})
}

func invalidUUIDs(ids []string) []string {
	var invalid []string
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	return invalid
}

// intQuery parses a numeric query parameter, falling back to zero so
// the store applies its defaults.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
