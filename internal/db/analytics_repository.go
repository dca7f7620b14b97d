package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/dukaflow/dukaflow/internal/models"
)

// AnalyticsRepository runs the fixed aggregate queries behind the admin
// dashboards. Pure reads over the same products/orders tables.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(database *PostgresDB) *AnalyticsRepository {
	return &AnalyticsRepository{db: database.Conn}
}

type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	TotalStock int     `json:"total_stock"`
	AvgPrice   float64 `json:"avg_price"`
}

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DashboardSummary struct {
	ProductCount   int     `json:"product_count"`
	InventoryValue float64 `json:"inventory_value"`
	PendingOrders  int     `json:"pending_orders"`
	PaidOrders     int     `json:"paid_orders"`
	FailedOrders   int     `json:"failed_orders"`
	Revenue        float64 `json:"revenue"`
}

// CategoryBreakdown aggregates the catalog per category.
func (r *AnalyticsRepository) CategoryBreakdown(ctx context.Context) ([]CategoryBreakdown, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(stock), 0), COALESCE(ROUND(AVG(price), 2), 0)
		FROM products
		GROUP BY category
		ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	var out []CategoryBreakdown
	for rows.Next() {
		var b CategoryBreakdown
		if err := rows.Scan(&b.Category, &b.Count, &b.TotalStock, &b.AvgPrice); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PriceBuckets is a fixed-range histogram of product prices.
func (r *AnalyticsRepository) PriceBuckets(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, `
		SELECT CASE
			WHEN price < 100 THEN 'Under 100'
			WHEN price < 500 THEN '100 - 499'
			WHEN price < 1000 THEN '500 - 999'
			WHEN price < 5000 THEN '1,000 - 4,999'
			ELSE '5,000+'
		END AS bucket, COUNT(*)
		FROM products
		GROUP BY bucket
		ORDER BY MIN(price)`)
}

// StockBuckets groups products into out-of-stock, low and healthy bands.
func (r *AnalyticsRepository) StockBuckets(ctx context.Context, lowThreshold int) ([]Bucket, error) {
	return r.buckets(ctx, fmt.Sprintf(`
		SELECT CASE
			WHEN stock = 0 THEN 'Out of stock'
			WHEN stock <= %d THEN 'Low stock'
			ELSE 'In stock'
		END AS bucket, COUNT(*)
		FROM products
		GROUP BY bucket
		ORDER BY MIN(stock)`, lowThreshold))
}

func (r *AnalyticsRepository) buckets(ctx context.Context, query string) ([]Bucket, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LowStock lists products at or below the threshold, emptiest first.
func (r *AnalyticsRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE stock <= $1 ORDER BY stock ASC, name", threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// LowStockAmong restricts the low-stock check to specific products; the
// worker uses it after an order event to alert on just-depleted lines.
func (r *AnalyticsRepository) LowStockAmong(ctx context.Context, threshold int, productIDs []int) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(productIDs))
	for i, id := range productIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE stock <= $1 AND id = ANY($2) ORDER BY stock ASC",
		threshold, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Summary feeds the dashboard cards: catalog size and value, order counts
// per payment status, and paid revenue.
func (r *AnalyticsRepository) Summary(ctx context.Context) (*DashboardSummary, error) {
	var s DashboardSummary

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(ROUND(SUM(price * stock), 2), 0) FROM products`,
	).Scan(&s.ProductCount, &s.InventoryValue)
	if err != nil {
		return nil, fmt.Errorf("failed to query product summary: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE payment_status = 'pending'),
		       COUNT(*) FILTER (WHERE payment_status = 'paid'),
		       COUNT(*) FILTER (WHERE payment_status = 'failed'),
		       COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0)
		FROM orders`,
	).Scan(&s.PendingOrders, &s.PaidOrders, &s.FailedOrders, &s.Revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to query order summary: %w", err)
	}

	return &s, nil
}
