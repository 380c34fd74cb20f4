package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), common.ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), common.ErrConflict)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestFileRepository_IncrementDownloads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "files" SET "download_count"=download_count \+ \$1 WHERE id = \$2`).
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementDownloads(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_IncrementDownloads_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepository(db)

	mock.ExpectExec(`UPDATE "files" SET "download_count"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementDownloads(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFileRepository_DeleteByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepository(db)

	mock.ExpectExec(`DELETE FROM "files" WHERE id = \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByID(context.Background(), uuid.New()))

	mock.ExpectExec(`DELETE FROM "files"`).
		WillReturnError(errors.New("db down"))
	err := repo.DeleteByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_ListWithCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepository(db)

	catID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "files" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "original_name", "size", "mime_type", "storage_path", "download_count", "download_slug", "category_id", "created_at"}).
			AddRow(uuid.New().String(), "a.pdf", "Report.pdf", 2048, "application/pdf", "uploads/a.pdf", 3, "slugA", catID.String(), now).
			AddRow(uuid.New().String(), "b.png", "logo.png", 10, nil, "uploads/b.png", 0, "slugB", catID.String(), now.Add(-time.Hour)))

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE "categories"."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}).
			AddRow(catID.String(), "Docs", "#6366f1"))

	files, err := repo.ListWithCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "Report.pdf", files[0].OriginalName)
	assert.Equal(t, int64(3), files[0].DownloadCount)
	require.NotNil(t, files[0].MimeType)
	assert.Equal(t, "application/pdf", *files[0].MimeType)
	assert.Nil(t, files[1].MimeType)
	require.NotNil(t, files[0].Category)
	assert.Equal(t, "Docs", files[0].Category.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_ExistingStoragePaths(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepository(db)

	got, err := repo.ExistingStoragePaths(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(`SELECT "storage_path" FROM "files" WHERE storage_path IN`).
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).AddRow("uploads/a.pdf"))

	got, err = repo.ExistingStoragePaths(context.Background(), []string{"uploads/a.pdf", "uploads/orphan.bin"})
	require.NoError(t, err)
	assert.Contains(t, got, "uploads/a.pdf")
	assert.NotContains(t, got, "uploads/orphan.bin")
}

func TestCategoryRepository_ListOrdered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "categories" ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}).
			AddRow(uuid.New().String(), "Archives", "#f97316").
			AddRow(uuid.New().String(), "Images", "#22c55e"))

	cats, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Archives", cats[0].Name)
}

func TestCategoryRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(`INSERT INTO "categories"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Category{Name: "Docs", Color: "#6366f1"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCategoryRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(`INSERT INTO "categories"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &models.Category{Name: "Docs", Color: "#6366f1"}
	require.NoError(t, repo.Create(context.Background(), cat))
	assert.NotEqual(t, uuid.Nil, cat.ID, "BeforeCreate assigns an id")
}

func TestCategoryRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)
	id := uuid.New()
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectExec(`UPDATE "categories" SET .* WHERE id = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "created_at", "updated_at"}).
			AddRow(id, "Docs", "#22c55e", created, updated))

	cat, err := repo.Update(context.Background(), id, "Docs", "#22c55e")
	require.NoError(t, err)
	assert.Equal(t, id, cat.ID)
	assert.Equal(t, "#22c55e", cat.Color)
	assert.Equal(t, created, cat.CreatedAt)
	assert.Equal(t, updated, cat.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(`UPDATE "categories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), uuid.New(), "Docs", "#22c55e")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(`DELETE FROM "categories" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), common.ErrNotFound)
}

func TestUserRepository_GetByProviderID_Unsupported(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByProviderID(context.Background(), "myspace", "1")
	assert.Error(t, err)
}
