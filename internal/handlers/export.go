package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/export"
)

type ExportHandler struct {
	repo   *db.ProductRepository
	logger *zap.Logger
}

func NewExportHandler(repo *db.ProductRepository, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{repo: repo, logger: logger}
}

// ProductsCSV downloads the filtered catalog as a CSV attachment. The
// same query keys as the product listing apply, but paging is ignored
// so the export always covers the full result set.
func (h *ExportHandler) ProductsCSV(c *gin.Context) {
	filter := parseProductFilter(c)
	filter.Limit = 0
	filter.Offset = 0

	products, _, err := h.repo.Search(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := export.WriteProductsCSV(c.Writer, products); err != nil {
		h.logger.Error("CSV export failed mid-stream", zap.Error(err))
	}
}
