package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/fileshare-catalog/models"
)

type CategoryRepository interface {
	ListOrdered(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uuid.UUID, name, color string) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListOrdered returns all categories ordered by name.
func (r *GormCategoryRepository) ListOrdered(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

// Create inserts the category. A duplicate name yields common.ErrConflict.
func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

// Update renames and recolors the category and returns the stored row.
func (r *GormCategoryRepository) Update(ctx context.Context, id uuid.UUID, name, color string) (*models.Category, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Category{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "color": color})
	if err := affectedOne(res); err != nil {
		return nil, err
	}

	var category models.Category
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affectedOne(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}))
}
