package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/cache"
	"github.com/dukaflow/dukaflow/internal/models"
)

// CachedProductRepository wraps catalog reads with Redis cache-aside.
// Every catalog mutation, including stock movements from the order
// lifecycle, invalidates the catalog keys.
type CachedProductRepository struct {
	repo   *ProductRepository
	cache  *cache.RedisCache
	logger *zap.Logger
}

func NewCachedProductRepository(repo *ProductRepository, c *cache.RedisCache, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{repo: repo, cache: c, logger: logger}
}

func productKey(id int) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

const (
	allProductsKey = "catalog:products:all"
	categoriesKey  = "catalog:categories"
)

// GetAll returns the whole catalog, cache-aside.
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.cache.Get(ctx, allProductsKey, &products); err == nil {
		return products, nil
	}

	products, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, allProductsKey, products); err != nil {
		r.logger.Warn("failed to cache products", zap.Error(err))
	}
	return products, nil
}

// GetByID returns a single product, cache-aside.
func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := r.cache.Get(ctx, productKey(id), &product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", zap.Error(err))
	}

	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, productKey(id), p); err != nil {
		r.logger.Warn("failed to cache product", zap.Int("product_id", id), zap.Error(err))
	}
	return p, nil
}

// Categories returns the distinct category list, cache-aside.
func (r *CachedProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.cache.Get(ctx, categoriesKey, &categories); err == nil {
		return categories, nil
	}

	categories, err := r.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, categoriesKey, categories); err != nil {
		r.logger.Warn("failed to cache categories", zap.Error(err))
	}
	return categories, nil
}

// Create inserts a product and invalidates the catalog cache.
func (r *CachedProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	r.InvalidateCatalog(ctx)
	return product, nil
}

// Update replaces a product and invalidates the catalog cache.
func (r *CachedProductRepository) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := r.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.InvalidateCatalog(ctx)
	return product, nil
}

// Delete removes a product and invalidates the catalog cache.
func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.InvalidateCatalog(ctx)
	return nil
}

// RestoreCatalog replaces the catalog from a backup snapshot and drops
// every cached key, since most of the catalog likely changed.
func (r *CachedProductRepository) RestoreCatalog(ctx context.Context, products []models.Product) error {
	if err := r.repo.RestoreCatalog(ctx, products); err != nil {
		return err
	}
	r.InvalidateCatalog(ctx)
	return nil
}

// InvalidateCatalog drops every catalog and analytics key. Called after any
// write that touches products, including order stock movements.
func (r *CachedProductRepository) InvalidateCatalog(ctx context.Context) {
	if err := r.cache.DeleteByPattern(ctx, "catalog:*"); err != nil {
		r.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
	if err := r.cache.DeleteByPattern(ctx, "analytics:*"); err != nil {
		r.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}
