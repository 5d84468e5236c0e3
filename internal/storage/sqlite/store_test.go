package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "Tester", email, "hashed-secret")
	require.NoError(t, err)
	return u
}

func seedHierarchy(t *testing.T, s *Store, userID string) (models.Workspace, models.List) {
	t.Helper()
	ctx := context.Background()
	w, err := s.CreateWorkspace(ctx, userID, models.Workspace{
		Name:   "Personal",
		Avatar: models.Avatar{Icon: "house", Color: "#2563eb"},
	})
	require.NoError(t, err)
	l, err := s.CreateList(ctx, userID, w.ID, "Inbox")
	require.NoError(t, err)
	return w, l
}

func seedTask(t *testing.T, s *Store, userID, listID, name string, mut func(*models.Task)) models.Task {
	t.Helper()
	task := models.Task{ListID: listID, Name: name}
	if mut != nil {
		mut(&task)
	}
	created, err := s.CreateTask(context.Background(), userID, task)
	require.NoError(t, err)
	return created
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := seedUser(t, s, "dup@example.com")

	_, err := s.CreateUser(ctx, "Other", "dup@example.com", "hash2")
	require.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.UserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Email, got.Email)
}

func TestWorkspaceScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	w, _ := seedHierarchy(t, s, owner.ID)

	_, err := s.Workspace(ctx, w.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound, "foreign workspace must look unknown, not forbidden")

	got, err := s.Workspace(ctx, w.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
}

func TestListInheritsWorkspaceOwner(t *testing.T) {
	s := newTestStore(t)

	owner := seedUser(t, s, "owner@example.com")
	w, l := seedHierarchy(t, s, owner.ID)

	assert.Equal(t, w.UserID, l.UserID)
	assert.Equal(t, w.ID, l.WorkspaceID)
}

func TestCreateListUnderForeignWorkspace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	w, _ := seedHierarchy(t, s, owner.ID)

	_, err := s.CreateList(ctx, stranger.ID, w.ID, "Sneaky")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskUnderForeignList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	_, l := seedHierarchy(t, s, owner.ID)

	_, err := s.CreateTask(ctx, stranger.ID, models.Task{ListID: l.ID, Name: "Sneaky"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWorkspaceCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	w, l1 := seedHierarchy(t, s, owner.ID)
	l2, err := s.CreateList(ctx, owner.ID, w.ID, "Second")
	require.NoError(t, err)

	t1 := seedTask(t, s, owner.ID, l1.ID, "one", nil)
	t2 := seedTask(t, s, owner.ID, l2.ID, "two", nil)

	require.NoError(t, s.DeleteWorkspace(ctx, w.ID, owner.ID))

	_, err = s.Workspace(ctx, w.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.List(ctx, l1.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.List(ctx, l2.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Task(ctx, t1.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Task(ctx, t2.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWorkspaceForeignOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	w, _ := seedHierarchy(t, s, owner.ID)

	require.ErrorIs(t, s.DeleteWorkspace(ctx, w.ID, stranger.ID), ErrNotFound)

	_, err := s.Workspace(ctx, w.ID, owner.ID)
	assert.NoError(t, err, "workspace must survive a foreign delete attempt")
}

func TestDeleteListCascadesTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)
	task := seedTask(t, s, owner.ID, l.ID, "doomed", nil)

	require.NoError(t, s.DeleteList(ctx, l.ID, owner.ID))

	_, err := s.List(ctx, l.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Task(ctx, task.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteListAccessDenied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	_, l := seedHierarchy(t, s, owner.ID)

	err := s.DeleteList(ctx, l.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrAccessDenied, "an existing list in a foreign workspace is forbidden, not unknown")
}

func TestLatestListID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")

	id, err := s.LatestListID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, id)

	w, _ := seedHierarchy(t, s, owner.ID)
	second, err := s.CreateList(ctx, owner.ID, w.ID, "Newest")
	require.NoError(t, err)

	id, err = s.LatestListID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, id)
}

func TestListInWorkspace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	w, l := seedHierarchy(t, s, owner.ID)
	other, err := s.CreateWorkspace(ctx, owner.ID, models.Workspace{
		Name:   "Work",
		Avatar: models.Avatar{Icon: "briefcase", Color: "#dc2626"},
	})
	require.NoError(t, err)

	member, err := s.ListInWorkspace(ctx, l.ID, w.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = s.ListInWorkspace(ctx, l.ID, other.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestUpdateTaskIgnoresImmutableRefs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)
	task := seedTask(t, s, owner.ID, l.ID, "rename me", nil)

	name := "renamed"
	status := models.StatusComplete
	updated, err := s.UpdateTask(ctx, task.ID, owner.ID, TaskUpdate{Name: &name, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, models.StatusComplete, updated.Status)
	assert.Equal(t, task.ListID, updated.ListID)
	assert.Equal(t, task.UserID, updated.UserID)
}

func TestUpdateTaskRejectsBadEnum(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)
	task := seedTask(t, s, owner.ID, l.ID, "keep me", nil)

	bad := "done"
	_, err := s.UpdateTask(ctx, task.ID, owner.ID, TaskUpdate{Status: &bad})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, `"done" not supported`)

	got, err := s.Task(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusToDo, got.Status)
}

func TestBulkUpdateTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)
	t1 := seedTask(t, s, owner.ID, l.ID, "a", nil)
	t2 := seedTask(t, s, owner.ID, l.ID, "b", nil)

	status := models.StatusComplete
	modified, err := s.UpdateTasks(ctx, owner.ID, []string{t1.ID, t2.ID}, TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 2, modified)

	for _, id := range []string{t1.ID, t2.ID} {
		got, err := s.Task(ctx, id, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusComplete, got.Status)
	}
}

func TestBulkUpdateRejectsBadEnumBeforeWriting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)
	task := seedTask(t, s, owner.ID, l.ID, "untouched", nil)

	bad := "critical"
	_, err := s.UpdateTasks(ctx, owner.ID, []string{task.ID}, TaskUpdate{Priority: &bad})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := s.Task(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNone, got.Priority)
}

func TestBulkDeleteScopedToListAndOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	w, l1 := seedHierarchy(t, s, owner.ID)
	l2, err := s.CreateList(ctx, owner.ID, w.ID, "Other")
	require.NoError(t, err)

	inList := seedTask(t, s, owner.ID, l1.ID, "in list", nil)
	elsewhere := seedTask(t, s, owner.ID, l2.ID, "elsewhere", nil)

	deleted, err := s.DeleteTasks(ctx, owner.ID, l1.ID, []string{inList.ID, elsewhere.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted, "a task from another list must not be deleted")

	_, err = s.Task(ctx, elsewhere.ID, owner.ID)
	assert.NoError(t, err)
}

func TestStatusCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)

	for i := 0; i < 3; i++ {
		seedTask(t, s, owner.ID, l.ID, "todo", nil)
	}
	for i := 0; i < 2; i++ {
		seedTask(t, s, owner.ID, l.ID, "wip", func(task *models.Task) { task.Status = models.StatusInProgress })
	}

	counts, err := s.StatusCounts(ctx, owner.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCounts{
		TotalCount:      5,
		ToDoCount:       3,
		InProgressCount: 2,
		CompleteCount:   0,
	}, counts)

	counts, err = s.StatusCounts(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 5, counts.TotalCount)
}

func TestPriorityCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	_, l := seedHierarchy(t, s, owner.ID)

	seedTask(t, s, owner.ID, l.ID, "u", func(task *models.Task) { task.Priority = models.PriorityUrgent })
	seedTask(t, s, owner.ID, l.ID, "h1", func(task *models.Task) { task.Priority = models.PriorityHigh })
	seedTask(t, s, owner.ID, l.ID, "h2", func(task *models.Task) { task.Priority = models.PriorityHigh })
	seedTask(t, s, owner.ID, l.ID, "plain", nil)

	counts, err := s.PriorityCounts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityCounts{Urgent: 1, High: 2, Normal: 0, Low: 0, None: 0}, counts)
}
