package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an account identity. The bcrypt hash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Avatar is the icon/color pair embedded in a workspace. It has no
// identity of its own.
type Avatar struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Workspace is the root container of the ownership chain.
type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Avatar    Avatar    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// List groups tasks inside a workspace. UserID is denormalized from the
// parent workspace and must match it; authorization checks read it
// directly instead of walking to the parent.
type List struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Task is the leaf work item. Date fields are optional; a nil date means
// the task is undated for that field.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ListID      string     `json:"listId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Task status values.
const (
	StatusToDo       = "toDo"
	StatusInProgress = "inProgress"
	StatusComplete   = "complete"
)

// Task priority values.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
	PriorityNone   = "none"
)

// statusOrder and priorityOrder define the categorical sort order used
// by the task query builder: lower rank sorts first when ascending.
// Values outside the declared sets rank after everything else.
var statusOrder = []string{StatusToDo, StatusInProgress, StatusComplete}

var priorityOrder = []string{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow, PriorityNone}

// StatusRank returns the categorical rank of a task status.
func StatusRank(status string) int {
	return rankOf(statusOrder, status)
}

// PriorityRank returns the categorical rank of a task priority.
func PriorityRank(priority string) int {
	return rankOf(priorityOrder, priority)
}

// StatusValues returns the declared statuses in rank order.
func StatusValues() []string {
	return statusOrder
}

// PriorityValues returns the declared priorities in rank order.
func PriorityValues() []string {
	return priorityOrder
}

func rankOf(order []string, v string) int {
	for i, candidate := range order {
		if candidate == v {
			return i + 1
		}
	}
	return len(order) + 1
}

// ValidStatus reports whether status is one of the declared enum values.
func ValidStatus(status string) bool {
	return StatusRank(status) <= len(statusOrder)
}

// ValidPriority reports whether priority is one of the declared enum values.
func ValidPriority(priority string) bool {
	return PriorityRank(priority) <= len(priorityOrder)
}

// ValidationError carries the itemized messages of a failed entity
// validation. It maps to a 400 response with an errors array.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError wraps messages, or returns nil when there are none.
func NewValidationError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// Validate checks required fields and enum membership.
func (t *Task) Validate() error {
	var errs []string
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "task name is required")
	}
	if t.ListID == "" {
		errs = append(errs, "list id is required to create task")
	}
	if !ValidStatus(t.Status) {
		errs = append(errs, fmt.Sprintf("%q not supported", t.Status))
	}
	if !ValidPriority(t.Priority) {
		errs = append(errs, fmt.Sprintf("%q not supported", t.Priority))
	}
	return NewValidationError(errs)
}

// Validate checks required workspace fields, including the embedded avatar.
func (w *Workspace) Validate() error {
	var errs []string
	if strings.TrimSpace(w.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(w.Avatar.Icon) == "" {
		errs = append(errs, "avatar icon is required")
	}
	if strings.TrimSpace(w.Avatar.Color) == "" {
		errs = append(errs, "avatar color is required")
	}
	return NewValidationError(errs)
}

// Validate checks required list fields.
func (l *List) Validate() error {
	var errs []string
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, "name is required")
	}
	if l.WorkspaceID == "" {
		errs = append(errs, "workspace id is required")
	}
	return NewValidationError(errs)
}

// StatusCounts is the per-status task distribution. Absent categories
// report zero, never null.
type StatusCounts struct {
	TotalCount      int64 `json:"totalCount"`
	ToDoCount       int64 `json:"toDoCount"`
	InProgressCount int64 `json:"inProgressCount"`
	CompleteCount   int64 `json:"completeCount"`
}

// PriorityCounts is the per-priority task distribution.
type PriorityCounts struct {
	Urgent int64 `json:"urgent"`
	High   int64 `json:"high"`
	Normal int64 `json:"normal"`
	Low    int64 `json:"low"`
	None   int64 `json:"none"`
}
