package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
)

type BackupHandler struct {
	repo   *db.CachedProductRepository
	logger *zap.Logger
}

func NewBackupHandler(repo *db.CachedProductRepository, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{repo: repo, logger: logger}
}

type catalogBackup struct {
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	Products   []models.Product `json:"products"`
}

// Download returns a JSON snapshot of the whole catalog suitable for
// feeding back into Restore.
func (h *BackupHandler) Download(c *gin.Context) {
	products, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalogBackup{
		ExportedAt: time.Now().UTC(),
		Count:      len(products),
		Products:   products,
	}})
}

// Restore upserts every product in the snapshot by its original ID,
// replacing current rows where they collide.
func (h *BackupHandler) Restore(c *gin.Context) {
	var backup catalogBackup
	if err := c.ShouldBindJSON(&backup); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid backup payload")
		return
	}
	if len(backup.Products) == 0 {
		respondError(c, http.StatusBadRequest, "Backup contains no products")
		return
	}

	if err := h.repo.RestoreCatalog(c.Request.Context(), backup.Products); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.logger.Info("catalog restored from backup", zap.Int("products", len(backup.Products)))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"restored": len(backup.Products)}})
}
