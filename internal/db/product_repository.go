package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukaflow/dukaflow/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

const productColumns = "id, name, category, price, stock, description, image_url, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll returns the whole catalog, name order.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
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

// GetByID returns a single product or ErrProductNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, category, price, stock, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		req.Name, req.Category, req.Price, req.Stock, req.Description, req.ImageURL,
	)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// Update replaces all mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, stock = $5, description = $6, image_url = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, req.Name, req.Category, req.Price, req.Stock, req.Description, req.ImageURL,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories in the catalog.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Search returns a filtered, sorted page of the catalog plus the total row
// count under the same predicate.
func (r *ProductRepository) Search(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	where, args := buildProductWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	paging, args := buildProductPaging(f, args)
	query := "SELECT " + productColumns + " FROM products" + where + buildProductOrderBy(f) + paging

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

// Stats computes catalog aggregates over the same predicate Search uses.
func (r *ProductRepository) Stats(ctx context.Context, f models.ProductFilter) (*models.CatalogStats, error) {
	where, args := buildProductWhere(f)

	var s models.CatalogStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(price), 2), 0),
		       COALESCE(MIN(price), 0),
		       COALESCE(MAX(price), 0),
		       COALESCE(SUM(stock), 0)
		FROM products`+where, args...,
	).Scan(&s.Count, &s.AvgPrice, &s.MinPrice, &s.MaxPrice, &s.TotalStock)
	if err != nil {
		return nil, fmt.Errorf("failed to compute catalog stats: %w", err)
	}
	return &s, nil
}

// RestoreCatalog upserts a product snapshot inside one transaction. Rows keep
// their snapshot ids so order_items references stay valid.
func (r *ProductRepository) RestoreCatalog(ctx context.Context, products []models.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, category, price, stock, description, image_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), NOW())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    category = EXCLUDED.category,
			    price = EXCLUDED.price,
			    stock = EXCLUDED.stock,
			    description = EXCLUDED.description,
			    image_url = EXCLUDED.image_url,
			    updated_at = NOW()`,
			p.ID, p.Name, p.Category, p.Price, p.Stock, p.Description, p.ImageURL, nullTime(p.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to restore product %d: %w", p.ID, err)
		}
	}

	// Keep the serial sequence ahead of restored ids.
	if _, err := tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT COALESCE(MAX(id), 1) FROM products))`,
	); err != nil {
		return fmt.Errorf("failed to advance product sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}
