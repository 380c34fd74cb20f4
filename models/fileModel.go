package models

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	OriginalName  string     `gorm:"not null" json:"original_name"`
	Size          int64      `gorm:"not null" json:"size"`
	MimeType      *string    `json:"mime_type"`
	StoragePath   string     `gorm:"uniqueIndex;not null" json:"storage_path"`
	DownloadCount int64      `gorm:"not null" json:"download_count"`
	DownloadSlug  string     `gorm:"uniqueIndex;not null" json:"download_slug"`
	UploadedBy    *uuid.UUID `gorm:"type:uuid" json:"uploaded_by,omitempty"`
	CategoryID    *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	CreatedAt     time.Time  `json:"created_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
}

// CategoryRef is the slice of a category shown next to a file.
type CategoryRef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Ref returns the name/color view of the file's category, or nil.
func (f *File) Ref() *CategoryRef {
	if f.Category == nil {
		return nil
	}
	return &CategoryRef{Name: f.Category.Name, Color: f.Category.Color}
}
