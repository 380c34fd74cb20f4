package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/basit/fileshare-catalog/catalog"
	"github.com/basit/fileshare-catalog/logging"
)

const qrSize = 256

// ShareHandler serves public short links to catalog files and their QR
// codes.
type ShareHandler struct {
	catalog *catalog.Service
	baseURL string
	logger  logging.Logger
}

// NewShareHandler builds share links under baseURL, or under the request's
// own host when baseURL is empty.
func NewShareHandler(svc *catalog.Service, baseURL string, logger logging.Logger) *ShareHandler {
	return &ShareHandler{catalog: svc, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (h *ShareHandler) linkFor(c *gin.Context, slug string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/s/" + slug
}

// ShareLink returns the public link of a file.
func (h *ShareHandler) ShareLink(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slug": file.DownloadSlug, "url": h.linkFor(c, file.DownloadSlug)})
}

// QRCode renders the public link of a file as a PNG.
func (h *ShareHandler) QRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch file")
		return
	}

	png, err := qrcode.Encode(h.linkFor(c, file.DownloadSlug), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error(c.Request.Context(), "error generating qr code", "file_id", file.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// DownloadBySlug is the public short link: it counts the download and
// redirects to the object.
func (h *ShareHandler) DownloadBySlug(c *gin.Context) {
	dl, err := h.catalog.DownloadBySlug(c.Request.Context(), c.Param("slug"), requester(c))
	if err != nil {
		respondError(c, err, "Download failed")
		return
	}
	c.Redirect(http.StatusFound, dl.URL)
}
