package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskhive/internal/models"
)

// WorkspaceUpdate carries the mutable workspace fields; nil means unchanged.
type WorkspaceUpdate struct {
	Name   *string
	Avatar *models.Avatar
}

// CreateWorkspace persists a new workspace owned by userID.
func (s *Store) CreateWorkspace(ctx context.Context, userID string, w models.Workspace) (models.Workspace, error) {
	w.UserID = userID
	if err := w.Validate(); err != nil {
		return models.Workspace{}, err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces(id, user_id, name, avatar_icon, avatar_color) VALUES(?, ?, ?, ?, ?)`,
		id, userID, w.Name, w.Avatar.Icon, w.Avatar.Color)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("insert workspace: %w", err)
	}
	return s.Workspace(ctx, id, userID)
}

// WorkspacesByUser retrieves all workspaces owned by userID, oldest first.
func (s *Store) WorkspacesByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, avatar_icon, avatar_color, created_at, updated_at
         FROM workspaces WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []models.Workspace{}
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Avatar.Icon, &w.Avatar.Color, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

// CountWorkspaces returns the number of workspaces owned by userID.
func (s *Store) CountWorkspaces(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count workspaces: %w", err)
	}
	return count, nil
}

// Workspace fetches a workspace by id, scoped to its owner. A workspace
// owned by someone else is reported as ErrNotFound.
func (s *Store) Workspace(ctx context.Context, id, userID string) (models.Workspace, error) {
	var w models.Workspace
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, avatar_icon, avatar_color, created_at, updated_at
         FROM workspaces WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&w.ID, &w.UserID, &w.Name, &w.Avatar.Icon, &w.Avatar.Color, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workspace{}, ErrNotFound
	}
	if err != nil {
		return models.Workspace{}, fmt.Errorf("get workspace: %w", err)
	}
	return w, nil
}

// UpdateWorkspace applies the provided changes to an owned workspace.
func (s *Store) UpdateWorkspace(ctx context.Context, id, userID string, upd WorkspaceUpdate) (models.Workspace, error) {
	current, err := s.Workspace(ctx, id, userID)
	if err != nil {
		return models.Workspace{}, err
	}

	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Avatar != nil {
		current.Avatar = *upd.Avatar
	}
	if err := current.Validate(); err != nil {
		return models.Workspace{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE workspaces SET name = ?, avatar_icon = ?, avatar_color = ?, updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND user_id = ?`,
		current.Name, current.Avatar.Icon, current.Avatar.Color, id, userID)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("update workspace: %w", err)
	}
	return s.Workspace(ctx, id, userID)
}

// DeleteWorkspace removes an owned workspace together with its lists and
// their tasks. The cascade runs in one transaction, so a failure leaves
// the hierarchy untouched rather than partially deleted.
func (s *Store) DeleteWorkspace(ctx context.Context, id, userID string) error {
	if _, err := s.Workspace(ctx, id, userID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE list_id IN (SELECT id FROM lists WHERE workspace_id = ?)`, id); err != nil {
		return fmt.Errorf("delete workspace tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE workspace_id = ?`, id); err != nil {
		return fmt.Errorf("delete workspace lists: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade: %w", err)
	}
	return nil
}
