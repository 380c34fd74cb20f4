package catalog

import "github.com/basit/fileshare-catalog/models"

// Stats aggregates the catalog for the admin dashboard.
type Stats struct {
	TotalFiles     int   `json:"total_files"`
	TotalDownloads int64 `json:"total_downloads"`
	TotalSize      int64 `json:"total_size"`
}

func ComputeStats(files []models.File) Stats {
	st := Stats{TotalFiles: len(files)}
	for _, f := range files {
		st.TotalDownloads += f.DownloadCount
		st.TotalSize += f.Size
	}
	return st
}
