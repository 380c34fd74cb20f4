package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/categories"
)

type CategoryHandler struct {
	categories *categories.Service
}

func NewCategoryHandler(svc *categories.Service) *CategoryHandler {
	return &CategoryHandler{categories: svc}
}

type categoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *CategoryHandler) Palette(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"colors": categories.Palette()})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var body categoryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	cat, err := h.categories.Create(c.Request.Context(), body.Name, body.Color)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "category": cat})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body categoryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	cat, err := h.categories.Update(c.Request.Context(), id, body.Name, body.Color)
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "category": cat})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok || !confirmed(c) {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
