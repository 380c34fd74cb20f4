package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/catalog"
)

type FileHandler struct {
	catalog *catalog.Service
}

func NewFileHandler(svc *catalog.Service) *FileHandler {
	return &FileHandler{catalog: svc}
}

// ListFiles returns the catalog filtered by the q and category query
// parameters.
func (h *FileHandler) ListFiles(c *gin.Context) {
	flt := catalog.Filter{Search: c.Query("q")}
	if raw := c.Query("category"); raw != "" && raw != "all" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		flt.CategoryID = &id
	}

	files, err := h.catalog.Search(c.Request.Context(), flt)
	if err != nil {
		respondError(c, err, "Failed to fetch files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": catalog.NewFileViews(files)})
}

func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": catalog.NewFileView(*file)})
}

// DownloadFile counts the download and returns the patched record with the
// URL to fetch.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	dl, err := h.catalog.Download(c.Request.Context(), id, requester(c))
	if err != nil {
		respondError(c, err, "Download failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Download started",
		"file":    catalog.NewFileView(dl.File),
		"url":     dl.URL,
	})
}

// RedirectDownload counts the download and redirects the browser to the
// object.
func (h *FileHandler) RedirectDownload(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	dl, err := h.catalog.Download(c.Request.Context(), id, requester(c))
	if err != nil {
		respondError(c, err, "Download failed")
		return
	}
	c.Redirect(http.StatusFound, dl.URL)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok || !confirmed(c) {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func requester(c *gin.Context) catalog.Requester {
	req := catalog.Requester{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if id, err := auth.UserIDFromContext(c.Request.Context()); err == nil {
		req.UserID = id
	}
	return req
}
