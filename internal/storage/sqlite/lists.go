package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskhive/internal/models"
)

// CreateList persists a new list after re-validating that the parent
// workspace exists and belongs to userID. The list inherits the owner
// from the workspace, never from the request.
func (s *Store) CreateList(ctx context.Context, userID, workspaceID, name string) (models.List, error) {
	l := models.List{UserID: userID, WorkspaceID: workspaceID, Name: name}
	if err := l.Validate(); err != nil {
		return models.List{}, err
	}

	workspace, err := s.Workspace(ctx, workspaceID, userID)
	if err != nil {
		return models.List{}, err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lists(id, user_id, workspace_id, name) VALUES(?, ?, ?, ?)`,
		id, workspace.UserID, workspaceID, name)
	if err != nil {
		return models.List{}, fmt.Errorf("insert list: %w", err)
	}
	return s.List(ctx, id, userID)
}

// ListsByUser retrieves every list owned by userID.
func (s *Store) ListsByUser(ctx context.Context, userID string) ([]models.List, error) {
	return s.queryLists(ctx,
		`SELECT id, user_id, workspace_id, name, created_at, updated_at
         FROM lists WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
}

// ListsByWorkspace retrieves the lists of an owned workspace. The
// workspace ownership is re-validated first.
func (s *Store) ListsByWorkspace(ctx context.Context, userID, workspaceID string) ([]models.List, error) {
	if _, err := s.Workspace(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	return s.queryLists(ctx,
		`SELECT id, user_id, workspace_id, name, created_at, updated_at
         FROM lists WHERE workspace_id = ? ORDER BY created_at ASC, rowid ASC`, workspaceID)
}

func (s *Store) queryLists(ctx context.Context, query string, args ...any) ([]models.List, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.UserID, &l.WorkspaceID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// List fetches a list by id, scoped to its owner.
func (s *Store) List(ctx context.Context, id, userID string) (models.List, error) {
	var l models.List
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, workspace_id, name, created_at, updated_at
         FROM lists WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&l.ID, &l.UserID, &l.WorkspaceID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.List{}, ErrNotFound
	}
	if err != nil {
		return models.List{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// UpdateList renames an owned list. The workspace and owner references
// are immutable after creation.
func (s *Store) UpdateList(ctx context.Context, id, userID string, name *string) (models.List, error) {
	current, err := s.List(ctx, id, userID)
	if err != nil {
		return models.List{}, err
	}

	if name != nil {
		current.Name = *name
	}
	if err := current.Validate(); err != nil {
		return models.List{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE lists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		current.Name, id, userID)
	if err != nil {
		return models.List{}, fmt.Errorf("update list: %w", err)
	}
	return s.List(ctx, id, userID)
}

// DeleteList removes a list and all its tasks in one transaction. A
// missing list is ErrNotFound; a list whose workspace belongs to another
// user is ErrAccessDenied.
func (s *Store) DeleteList(ctx context.Context, id, userID string) error {
	var workspaceID string
	err := s.db.QueryRowContext(ctx, `SELECT workspace_id FROM lists WHERE id = ?`, id).Scan(&workspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get list: %w", err)
	}

	if _, err := s.Workspace(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrAccessDenied
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("delete list tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade: %w", err)
	}
	return nil
}

// LatestListID returns the id of the most recently created list owned by
// userID, or empty when the user has no lists.
func (s *Store) LatestListID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM lists WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest list: %w", err)
	}
	return id, nil
}

// ListInWorkspace reports whether an owned list belongs to the given
// workspace. An unknown or foreign list is ErrNotFound.
func (s *Store) ListInWorkspace(ctx context.Context, listID, workspaceID, userID string) (bool, error) {
	l, err := s.List(ctx, listID, userID)
	if err != nil {
		return false, err
	}
	return l.WorkspaceID == workspaceID, nil
}
