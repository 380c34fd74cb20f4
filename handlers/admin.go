package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/catalog"
	"github.com/basit/fileshare-catalog/categories"
	"github.com/basit/fileshare-catalog/uploads"
)

// AdminHandler serves the dashboard: stats plus the data behind the files,
// upload and categories tabs.
type AdminHandler struct {
	catalog    *catalog.Service
	categories *categories.Service
	queue      *uploads.Queue
}

func NewAdminHandler(cat *catalog.Service, cats *categories.Service, queue *uploads.Queue) *AdminHandler {
	return &AdminHandler{catalog: cat, categories: cats, queue: queue}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, files, err := h.catalog.Stats(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch files")
		return
	}
	cats, err := h.categories.List(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":      stats,
		"files":      catalog.NewFileViews(files),
		"categories": cats,
		"uploads":    h.queue.Items(),
	})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, _, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Page answers browser navigation that made it past the admin gate.
func (h *AdminHandler) Page(c *gin.Context) {
	s := middleware.Snapshot(c)
	c.JSON(http.StatusOK, gin.H{"state": auth.Evaluate(s), "user": s})
}
