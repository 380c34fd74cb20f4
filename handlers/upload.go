package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/uploads"
)

type UploadHandler struct {
	queue    *uploads.Queue
	tempDir  string
	maxBytes int64
	logger   logging.Logger
}

func NewUploadHandler(queue *uploads.Queue, tempDir string, maxBytes int64, logger logging.Logger) *UploadHandler {
	return &UploadHandler{queue: queue, tempDir: tempDir, maxBytes: maxBytes, logger: logger}
}

// UploadFiles accepts a multipart batch (repeated "files" parts, optional
// "category_id") and queues it.
func (h *UploadHandler) UploadFiles(c *gin.Context) {
	ctx := c.Request.Context()
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	var categoryID *uuid.UUID
	if vals := form.Value["category_id"]; len(vals) > 0 && vals[0] != "" {
		id, err := uuid.Parse(vals[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		categoryID = &id
	}

	subs := make([]uploads.Submission, 0, len(headers))
	release := func() {
		for _, s := range subs {
			_ = s.Source.Release()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			release()
			h.logger.Error(ctx, "error opening uploaded part", "name", fh.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		tmp, n, err := uploads.Spool(h.tempDir, f)
		f.Close()
		if err != nil {
			release()
			h.logger.Error(ctx, "error spooling upload", "name", fh.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
		subs = append(subs, uploads.Submission{
			Name:        fh.Filename,
			Size:        n,
			ContentType: fh.Header.Get("Content-Type"),
			Source:      tmp,
		})
	}

	req := uploads.Request{Files: subs, CategoryID: categoryID}
	if s := middleware.Snapshot(c); s.SignedIn() {
		id := s.UserID
		req.UploadedBy = &id
	}

	items, err := h.queue.Submit(ctx, req)
	if err != nil {
		release()
		respondError(c, err, "Failed to queue upload")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("%d file(s) queued for upload", len(items)),
		"items":   items,
	})
}

func (h *UploadHandler) ListUploads(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.queue.Items()})
}

func (h *UploadHandler) DismissUpload(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.queue.Dismiss(id); err != nil {
		respondError(c, err, "Failed to dismiss upload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upload dismissed"})
}

func (h *UploadHandler) ClearCompleted(c *gin.Context) {
	n := h.queue.ClearCompleted()
	c.JSON(http.StatusOK, gin.H{"message": "Cleared completed uploads", "removed": n})
}
