package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/orders"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondServiceError maps service and storage sentinels onto the uniform
// error envelope. Anything unexpected becomes a generic operation failure;
// internals never leak to the client.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrAdminOnly):
		respondError(c, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, db.ErrProductNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrOrderNotPending):
		respondError(c, http.StatusConflict, err.Error())
	default:
		logger.Error("operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Operation failed")
	}
}
