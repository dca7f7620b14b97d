// Package export renders catalog data for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dukaflow/dukaflow/internal/models"
)

var productHeader = []string{"ID", "Name", "Category", "Price", "Stock", "Description", "Image URL", "Created At"}

// WriteProductsCSV streams products as CSV, header first.
func WriteProductsCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(productHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range products {
		record := []string{
			strconv.Itoa(p.ID),
			p.Name,
			p.Category,
			fmt.Sprintf("%.2f", p.Price),
			strconv.Itoa(p.Stock),
			p.Description,
			p.ImageURL,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
