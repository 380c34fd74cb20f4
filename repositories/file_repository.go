package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/fileshare-catalog/models"
)

type FileRepository interface {
	ListWithCategory(ctx context.Context) ([]models.File, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	GetBySlug(ctx context.Context, slug string) (*models.File, error)
	Create(ctx context.Context, file *models.File) error
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ExistingStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error)
}

type GormFileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// ListWithCategory returns every file, newest first, with its category loaded.
func (r *GormFileRepository) ListWithCategory(ctx context.Context) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, translate(err)
	}
	return files, nil
}

func (r *GormFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).Preload("Category").First(&file, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *GormFileRepository) GetBySlug(ctx context.Context, slug string) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).Preload("Category").First(&file, "download_slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *GormFileRepository) Create(ctx context.Context, file *models.File) error {
	return translate(r.db.WithContext(ctx).Omit("Category").Create(file).Error)
}

// IncrementDownloads adds one to the stored counter atomically.
func (r *GormFileRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	return affectedOne(res)
}

func (r *GormFileRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return affectedOne(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.File{}))
}

// ExistingStoragePaths returns the subset of paths that still have a row.
func (r *GormFileRepository) ExistingStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(paths))
	if len(paths) == 0 {
		return found, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("storage_path IN ?", paths).
		Pluck("storage_path", &existing).Error
	if err != nil {
		return nil, translate(err)
	}

	for _, p := range existing {
		found[p] = struct{}{}
	}
	return found, nil
}
