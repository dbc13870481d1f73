package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/todo-api/internal/core/domain"
)

var taskRowColumns = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

func newTaskRepoWithMock(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewTaskRepository(db), mock
}

func TestTaskRepository_Create(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tasks\s*\(user_id,\s*title,\s*description,\s*completed,\s*created_at,\s*updated_at\).*RETURNING\s+id$`).
		WithArgs("u1", "Buy milk", "", false, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	task := &domain.Task{OwnerID: "u1", Title: "Buy milk", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.Equal(t, int64(7), task.ID)
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(taskRowColumns).
		AddRow(int64(1), "u1", "one", "", false, now, now).
		AddRow(int64(3), "u1", "three", "desc", true, now, now)
	mock.ExpectQuery(`(?s)^SELECT .* FROM tasks WHERE user_id = \$1 ORDER BY id$`).
		WithArgs("u1").
		WillReturnRows(rows)

	tasks, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, "desc", tasks[1].Description)
	assert.True(t, tasks[1].Completed)
}

func TestTaskRepository_ListByOwnerEmpty(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectQuery(`FROM tasks WHERE user_id`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := repo.ListByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_FindByIDFiltersOwner(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND user_id = \$2$`).
		WithArgs(int64(5), "u2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "u2", 5)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepository_UpdateSendsOnlyPresentFields(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	done := true

	mock.ExpectQuery(`(?s)^UPDATE tasks SET.*COALESCE\(\$5, completed\).*GREATEST\(\$6, updated_at \+ interval '1 millisecond'\).*WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(5), "u1", nil, nil, true, now).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(5), "u1", "Buy milk", "", true, now.Add(-time.Hour), now))

	task, err := repo.Update(context.Background(), "u1", 5, domain.TaskPatch{Completed: &done}, now)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestTaskRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)
	title := "x"

	mock.ExpectQuery(`UPDATE tasks SET`).
		WithArgs(int64(9), "u1", "x", nil, nil, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u1", 9, domain.TaskPatch{Title: &title}, time.Now())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM tasks WHERE id = \$1 AND user_id = \$2$`).
		WithArgs(int64(5), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM tasks`).
		WithArgs(int64(5), "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1", 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1", 5), domain.ErrTaskNotFound)
}

func TestTaskRepository_DBErrorIsWrapped(t *testing.T) {
	repo, mock := newTaskRepoWithMock(t)
	boom := errors.New("db down")

	mock.ExpectQuery(`FROM tasks WHERE user_id`).WithArgs("u1").WillReturnError(boom)

	_, err := repo.ListByOwner(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrTaskNotFound)
}
