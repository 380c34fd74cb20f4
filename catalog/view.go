package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/models"
)

// FileView is a file record as the browser renders it.
type FileView struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	OriginalName  string              `json:"original_name"`
	Size          int64               `json:"size"`
	SizeLabel     string              `json:"size_label"`
	MimeType      *string             `json:"mime_type"`
	Kind          string              `json:"kind"`
	Extension     string              `json:"extension"`
	StoragePath   string              `json:"storage_path"`
	DownloadCount int64               `json:"download_count"`
	DownloadSlug  string              `json:"download_slug"`
	CategoryID    *uuid.UUID          `json:"category_id"`
	Category      *models.CategoryRef `json:"category"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewFileView(f models.File) FileView {
	mime := ""
	if f.MimeType != nil {
		mime = *f.MimeType
	}
	return FileView{
		ID:            f.ID,
		Name:          f.Name,
		OriginalName:  f.OriginalName,
		Size:          f.Size,
		SizeLabel:     FormatSize(f.Size),
		MimeType:      f.MimeType,
		Kind:          KindOf(mime),
		Extension:     Extension(f.OriginalName),
		StoragePath:   f.StoragePath,
		DownloadCount: f.DownloadCount,
		DownloadSlug:  f.DownloadSlug,
		CategoryID:    f.CategoryID,
		Category:      f.Ref(),
		CreatedAt:     f.CreatedAt,
	}
}

func NewFileViews(files []models.File) []FileView {
	views := make([]FileView, 0, len(files))
	for _, f := range files {
		views = append(views, NewFileView(f))
	}
	return views
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with 1024-based units and at most two
// decimals, e.g. 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// KindOf buckets a MIME type into the icon families the browser shows.
func KindOf(mime string) string {
	switch {
	case mime == "":
		return "other"
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	}
	for _, s := range []string{"pdf", "document", "text/", "word", "excel", "powerpoint"} {
		if strings.Contains(mime, s) {
			return "document"
		}
	}
	for _, s := range []string{"zip", "rar", "7z", "tar", "gzip"} {
		if strings.Contains(mime, s) {
			return "archive"
		}
	}
	return "other"
}

// Extension returns the upper-cased text after the last dot of name, or "" if
// name has no dot. Dotfiles count: ".env" is "ENV".
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToUpper(name[i+1:])
}
