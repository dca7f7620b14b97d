package db

import (
	"fmt"
	"strings"

	"github.com/dukaflow/dukaflow/internal/models"
)

// sortColumns is the allow-list of sortable catalog columns. Anything else
// falls back to name.
var sortColumns = map[string]string{
	"name":       "name",
	"category":   "category",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

// buildProductWhere turns a ProductFilter into a WHERE clause and its
// arguments. Only allow-listed keys ever reach the SQL text; user input is
// bound as parameters.
func buildProductWhere(f models.ProductFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if f.Search != "" {
		p := next()
		clauses = append(clauses, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
		args = append(args, "%"+f.Search+"%")
	}
	if f.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = %s", next()))
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= %s", next()))
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= %s", next()))
		args = append(args, *f.MaxPrice)
	}
	if f.MinStock != nil {
		clauses = append(clauses, fmt.Sprintf("stock >= %s", next()))
		args = append(args, *f.MinStock)
	}
	if f.MaxStock != nil {
		clauses = append(clauses, fmt.Sprintf("stock <= %s", next()))
		args = append(args, *f.MaxStock)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildProductOrderBy returns the ORDER BY clause for an allow-listed sort
// key and direction.
func buildProductOrderBy(f models.ProductFilter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if strings.EqualFold(f.SortDir, "desc") {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

// buildProductPaging appends LIMIT/OFFSET parameters. Limit <= 0 means no
// paging (used by the CSV export and backup paths).
func buildProductPaging(f models.ProductFilter, args []interface{}) (string, []interface{}) {
	if f.Limit <= 0 {
		return "", args
	}
	clause := fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return clause, append(args, f.Limit, offset)
}
