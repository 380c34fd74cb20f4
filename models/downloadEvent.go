package models

import (
	"time"

	"github.com/google/uuid"
)

type DownloadEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FileID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
