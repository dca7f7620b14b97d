package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaflow/dukaflow/internal/models"
)

func TestWriteProductsCSV(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	products := []models.Product{
		{ID: 1, Name: "Maize Flour 2kg", Category: "Groceries", Price: 185.5, Stock: 12, Description: "Fortified, 2kg bale", CreatedAt: created},
		{ID: 2, Name: "Cooking Oil, 1L", Category: "Groceries", Price: 320, Stock: 4, CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, products))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"ID", "Name", "Category", "Price", "Stock", "Description", "Image URL", "Created At"}, records[0])
	assert.Equal(t, "185.50", records[1][3])
	assert.Equal(t, "12", records[1][4])
	// Commas inside fields survive the round trip.
	assert.Equal(t, "Cooking Oil, 1L", records[2][1])
	assert.Equal(t, "2026-03-14 09:30:00", records[1][7])
}

func TestWriteProductsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
