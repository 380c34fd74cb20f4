// Package categories manages the named, colored labels files can be grouped
// under.
package categories

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/repositories"
)

const (
	msgNameRequired  = "Please enter a category name"
	msgDuplicateName = "This category name already exists"
	msgCreateFailed  = "Failed to create category"
	msgUpdateFailed  = "Failed to update category"
	msgDeleteFailed  = "Failed to delete category"
	msgBadColor      = "Please pick one of the preset colors"
	msgNotFound      = "Category not found"
)

var palette = []string{
	"#6366f1",
	"#8b5cf6",
	"#ec4899",
	"#ef4444",
	"#f97316",
	"#eab308",
	"#22c55e",
	"#06b6d4",
}

// Palette returns the preset category colors. The first one is the default.
func Palette() []string {
	return slices.Clone(palette)
}

type Service struct {
	repo   repositories.CategoryRepository
	logger logging.Logger
}

func NewService(repo repositories.CategoryRepository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repo.ListOrdered(ctx)
	if err != nil {
		s.logger.Error(ctx, "error fetching categories", "error", err)
		return nil, common.NewUserError(common.ErrInternal, "Failed to load categories", err)
	}
	return cats, nil
}

func (s *Service) Create(ctx context.Context, name, color string) (*models.Category, error) {
	name, color, err := normalize(name, color)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{Name: name, Color: color}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, s.storeError(ctx, err, msgCreateFailed)
	}

	s.logger.Info(ctx, "category created", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name, color string) (*models.Category, error) {
	name, color, err := normalize(name, color)
	if err != nil {
		return nil, err
	}

	cat, err := s.repo.Update(ctx, id, name, color)
	if err != nil {
		return nil, s.storeError(ctx, err, msgUpdateFailed)
	}
	return cat, nil
}

// Delete removes the category. Files that referenced it become
// uncategorised through the foreign key.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError(ctx, err, msgDeleteFailed)
	}
	s.logger.Info(ctx, "category deleted", "id", id)
	return nil
}

func normalize(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", common.NewUserError(common.ErrValidation, msgNameRequired, nil)
	}

	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		color = palette[0]
	}
	if !slices.Contains(palette, color) {
		return "", "", common.NewUserError(common.ErrValidation, msgBadColor, nil)
	}
	return name, color, nil
}

func (s *Service) storeError(ctx context.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, common.ErrConflict):
		return common.NewUserError(common.ErrConflict, msgDuplicateName, err)
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError(common.ErrNotFound, msgNotFound, err)
	default:
		s.logger.Error(ctx, fallback, "error", err)
		return common.NewUserError(common.ErrInternal, fallback, err)
	}
}
