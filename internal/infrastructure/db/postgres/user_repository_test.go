package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/todo-api/internal/core/domain"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func TestUserRepository_CreateAssignsID(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`^INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "alice", "hash", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.Create(context.Background(), &domain.User{
		Email: "alice@example.com", Username: "alice", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	_, err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE email = \$1$`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at", "updated_at"}).
			AddRow("u-1", "alice@example.com", "alice", "hash", now, now))

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1$`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
