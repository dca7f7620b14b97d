package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/cache"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
)

// analyticsTTL keeps dashboard aggregates fresh enough without hitting
// Postgres on every poll.
const analyticsTTL = time.Minute

type AnalyticsHandler struct {
	repo              *db.AnalyticsRepository
	cache             *cache.RedisCache
	lowStockThreshold int
	logger            *zap.Logger
}

func NewAnalyticsHandler(repo *db.AnalyticsRepository, c *cache.RedisCache, lowStockThreshold int, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, cache: c, lowStockThreshold: lowStockThreshold, logger: logger}
}

// cached runs compute unless a fresh copy is in Redis, and caches the
// result best-effort.
func cachedQuery[T any](h *AnalyticsHandler, ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	var out T
	if h.cache != nil {
		if err := h.cache.Get(ctx, key, &out); err == nil {
			return out, nil
		}
	}

	out, err := compute(ctx)
	if err != nil {
		return out, err
	}

	if h.cache != nil {
		if err := h.cache.SetTTL(ctx, key, out, analyticsTTL); err != nil {
			h.logger.Warn("failed to cache analytics", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Summary feeds the dashboard cards.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := cachedQuery(h, c.Request.Context(), "analytics:summary",
		func(ctx context.Context) (*db.DashboardSummary, error) { return h.repo.Summary(ctx) })
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// CategoryBreakdown aggregates the catalog per category.
func (h *AnalyticsHandler) CategoryBreakdown(c *gin.Context) {
	breakdown, err := cachedQuery(h, c.Request.Context(), "analytics:categories",
		func(ctx context.Context) ([]db.CategoryBreakdown, error) { return h.repo.CategoryBreakdown(ctx) })
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": breakdown})
}

// PriceBuckets is the price histogram.
func (h *AnalyticsHandler) PriceBuckets(c *gin.Context) {
	buckets, err := cachedQuery(h, c.Request.Context(), "analytics:price_buckets",
		func(ctx context.Context) ([]db.Bucket, error) { return h.repo.PriceBuckets(ctx) })
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "buckets": buckets})
}

// StockBuckets groups products into stock-level bands.
func (h *AnalyticsHandler) StockBuckets(c *gin.Context) {
	buckets, err := cachedQuery(h, c.Request.Context(), "analytics:stock_buckets",
		func(ctx context.Context) ([]db.Bucket, error) {
			return h.repo.StockBuckets(ctx, h.lowStockThreshold)
		})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "buckets": buckets})
}

// LowStock lists products at or below the restock threshold.
func (h *AnalyticsHandler) LowStock(c *gin.Context) {
	products, err := cachedQuery(h, c.Request.Context(), "analytics:low_stock",
		func(ctx context.Context) ([]models.Product, error) {
			return h.repo.LowStock(ctx, h.lowStockThreshold)
		})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
