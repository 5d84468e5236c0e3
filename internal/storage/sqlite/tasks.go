package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/models"
)

const taskColumns = `id, user_id, list_id, name, description, status, priority, start_date, end_date, due_date, created_at, updated_at`

// TaskUpdate carries the mutable task fields; nil means unchanged. The
// owner and list references are deliberately absent: they are immutable
// after creation and silently dropped from update requests.
type TaskUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	StartDate   *time.Time
	EndDate     *time.Time
	DueDate     *time.Time
}

// CreateTask persists a new task after re-validating that the parent
// list exists and belongs to userID.
func (s *Store) CreateTask(ctx context.Context, userID string, t models.Task) (models.Task, error) {
	t.UserID = userID
	if t.Status == "" {
		t.Status = models.StatusToDo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNone
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}

	if _, err := s.List(ctx, t.ListID, userID); err != nil {
		return models.Task{}, err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, user_id, list_id, name, description, status, priority, start_date, end_date, due_date)
         VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, t.ListID, strings.TrimSpace(t.Name), t.Description, t.Status, t.Priority,
		dateArg(t.StartDate), dateArg(t.EndDate), dateArg(t.DueDate))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.Task(ctx, id, userID)
}

// Task fetches a task by id, scoped to its owner.
func (s *Store) Task(ctx context.Context, id, userID string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// QueryTasks runs the list query plan and returns the requested page
// together with the total number of matching tasks, counted
// independently of the page window.
func (s *Store) QueryTasks(ctx context.Context, q TaskQuery) ([]models.Task, int64, error) {
	where, args := q.whereClause()

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ` + q.orderClause() + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, q.limit(), q.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// UpdateTask applies the provided changes to an owned task.
func (s *Store) UpdateTask(ctx context.Context, id, userID string, upd TaskUpdate) (models.Task, error) {
	current, err := s.Task(ctx, id, userID)
	if err != nil {
		return models.Task{}, err
	}

	applyTaskUpdate(&current, upd)
	if err := current.Validate(); err != nil {
		return models.Task{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, status = ?, priority = ?,
             start_date = ?, end_date = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND user_id = ?`,
		current.Name, current.Description, current.Status, current.Priority,
		dateArg(current.StartDate), dateArg(current.EndDate), dateArg(current.DueDate), id, userID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.Task(ctx, id, userID)
}

// UpdateTasks applies the same changes to every owned task in ids and
// returns the number of rows touched. Enum values are validated before
// anything is written.
func (s *Store) UpdateTasks(ctx context.Context, userID string, ids []string, upd TaskUpdate) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := validateUpdateEnums(upd); err != nil {
		return 0, err
	}

	set := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, strings.TrimSpace(*upd.Name))
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if upd.StartDate != nil {
		set = append(set, "start_date = ?")
		args = append(args, dateArg(upd.StartDate))
	}
	if upd.EndDate != nil {
		set = append(set, "end_date = ?")
		args = append(args, dateArg(upd.EndDate))
	}
	if upd.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, dateArg(upd.DueDate))
	}

	query := `UPDATE tasks SET ` + strings.Join(set, ", ") +
		` WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update tasks: %w", err)
	}
	return res.RowsAffected()
}

// DeleteTask removes an owned task and returns it.
func (s *Store) DeleteTask(ctx context.Context, id, userID string) (models.Task, error) {
	t, err := s.Task(ctx, id, userID)
	if err != nil {
		return models.Task{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return models.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return t, nil
}

// DeleteTasks removes the owned tasks of a list whose ids are in the
// given set and returns how many were deleted.
func (s *Store) DeleteTasks(ctx context.Context, userID, listID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := []any{userID, listID}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND list_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete tasks: %w", err)
	}
	return res.RowsAffected()
}

// StatusCounts aggregates the requester's tasks by status, scoped to one
// list when listID is non-empty. Computed from the live rows, so it is
// always consistent with current data.
func (s *Store) StatusCounts(ctx context.Context, userID, listID string) (models.StatusCounts, error) {
	query := `SELECT status, COUNT(*) FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if listID != "" {
		query += ` AND list_id = ?`
		args = append(args, listID)
	}
	query += ` GROUP BY status`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	var counts models.StatusCounts
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return models.StatusCounts{}, fmt.Errorf("scan status count: %w", err)
		}
		counts.TotalCount += n
		switch status {
		case models.StatusToDo:
			counts.ToDoCount = n
		case models.StatusInProgress:
			counts.InProgressCount = n
		case models.StatusComplete:
			counts.CompleteCount = n
		}
	}
	return counts, rows.Err()
}

// PriorityCounts aggregates the requester's prioritized tasks. Tasks
// with no priority are excluded from the scan, so None always reports
// zero.
func (s *Store) PriorityCounts(ctx context.Context, userID string) (models.PriorityCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT priority, COUNT(*) FROM tasks WHERE user_id = ? AND priority != ? GROUP BY priority`,
		userID, models.PriorityNone)
	if err != nil {
		return models.PriorityCounts{}, fmt.Errorf("priority counts: %w", err)
	}
	defer rows.Close()

	var counts models.PriorityCounts
	for rows.Next() {
		var priority string
		var n int64
		if err := rows.Scan(&priority, &n); err != nil {
			return models.PriorityCounts{}, fmt.Errorf("scan priority count: %w", err)
		}
		switch priority {
		case models.PriorityUrgent:
			counts.Urgent = n
		case models.PriorityHigh:
			counts.High = n
		case models.PriorityNormal:
			counts.Normal = n
		case models.PriorityLow:
			counts.Low = n
		}
	}
	return counts, rows.Err()
}

func applyTaskUpdate(t *models.Task, upd TaskUpdate) {
	if upd.Name != nil {
		t.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.StartDate != nil {
		t.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		t.EndDate = upd.EndDate
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
}

func validateUpdateEnums(upd TaskUpdate) error {
	var errs []string
	if upd.Status != nil && !models.ValidStatus(*upd.Status) {
		errs = append(errs, fmt.Sprintf("%q not supported", *upd.Status))
	}
	if upd.Priority != nil && !models.ValidPriority(*upd.Priority) {
		errs = append(errs, fmt.Sprintf("%q not supported", *upd.Priority))
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		errs = append(errs, "task name is required")
	}
	return models.NewValidationError(errs)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Optional dates are stored as RFC3339 UTC text, which sorts lexically
// and compares cleanly against the null-date fallback constants.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", v.String, err)
	}
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var start, end, due sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.ListID, &t.Name, &t.Description, &t.Status, &t.Priority,
		&start, &end, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if t.StartDate, err = parseDate(start); err != nil {
		return models.Task{}, err
	}
	if t.EndDate, err = parseDate(end); err != nil {
		return models.Task{}, err
	}
	if t.DueDate, err = parseDate(due); err != nil {
		return models.Task{}, err
	}
	return t, nil
}
