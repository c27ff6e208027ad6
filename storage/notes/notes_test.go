package notes

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return NewRepository(db), mock
}

func TestRepository_CreateListDelete(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "first")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "second")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)
	assert.False(t, list[0].CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ErrNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_InitIsIdempotent(t *testing.T) {
	repo := setupSQLite(t)
	assert.NoError(t, repo.Init(context.Background()))
}

func TestRepository_EmptyListIsNotNil(t *testing.T) {
	repo := setupSQLite(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepository_ListFailure(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery(`SELECT \* FROM "notes"`).WillReturnError(sql.ErrConnDone)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteNoRows(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectExec(`DELETE FROM "notes"`).WithArgs(int64(42)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteFailure(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectExec(`DELETE FROM "notes"`).WillReturnError(errors.New("disk full"))

	err := repo.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}
