package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/models"
)

// Filter narrows the catalog by name and category.
type Filter struct {
	// Search is matched case-insensitively against the original file name.
	Search string
	// CategoryID, when set, keeps only files in that category.
	CategoryID *uuid.UUID
}

// Matches reports whether f passes the filter.
func (flt Filter) Matches(f models.File) bool {
	if !strings.Contains(strings.ToLower(f.OriginalName), strings.ToLower(flt.Search)) {
		return false
	}
	if flt.CategoryID == nil {
		return true
	}
	return f.CategoryID != nil && *f.CategoryID == *flt.CategoryID
}

// Apply returns the files that pass flt, preserving order.
func Apply(files []models.File, flt Filter) []models.File {
	out := make([]models.File, 0, len(files))
	for _, f := range files {
		if flt.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}
