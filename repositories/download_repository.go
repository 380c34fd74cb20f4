package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/fileshare-catalog/models"
)

type DownloadEventRepository interface {
	Create(ctx context.Context, event *models.DownloadEvent) error
}

type GormDownloadEventRepository struct {
	db *gorm.DB
}

func NewDownloadEventRepository(db *gorm.DB) *GormDownloadEventRepository {
	return &GormDownloadEventRepository{db: db}
}

func (r *GormDownloadEventRepository) Create(ctx context.Context, event *models.DownloadEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(event).Error)
}
