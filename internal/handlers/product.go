package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
	"github.com/dukaflow/dukaflow/internal/money"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ProductHandler struct {
	repo   *db.ProductRepository
	cached *db.CachedProductRepository
	logger *zap.Logger
}

func NewProductHandler(repo *db.ProductRepository, cached *db.CachedProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, cached: cached, logger: logger}
}

// parseProductFilter reads the allow-listed filter keys from the query
// string. Unknown keys are ignored.
func parseProductFilter(c *gin.Context) models.ProductFilter {
	f := models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort_by"),
		SortDir:  c.Query("sort_dir"),
		Limit:    defaultPageSize,
	}

	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("min_stock")); err == nil {
		f.MinStock = &v
	}
	if v, err := strconv.Atoi(c.Query("max_stock")); err == nil {
		f.MaxStock = &v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		f.Limit = v
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	return f
}

// List returns a filtered catalog page plus aggregate stats over the same
// predicate.
func (h *ProductHandler) List(c *gin.Context) {
	filter := parseProductFilter(c)
	ctx := c.Request.Context()

	products, total, err := h.repo.Search(ctx, filter)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	stats, err := h.repo.Stats(ctx, filter)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"total":    total,
		"stats":    stats,
	})
}

// Stats returns only the aggregates for the current filter.
func (h *ProductHandler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context(), parseProductFilter(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"stats":               stats,
		"formatted_avg_price": money.Format(stats.AvgPrice),
	})
}

// Get returns a single product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.cached.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// Categories returns the distinct categories for filter dropdowns.
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.cached.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// Create adds a product (admin).
func (h *ProductHandler) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.cached.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// Update replaces a product (admin).
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.cached.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// Delete removes a product (admin).
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.cached.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}
