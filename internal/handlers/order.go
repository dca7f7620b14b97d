package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/middleware"
	"github.com/dukaflow/dukaflow/internal/models"
	"github.com/dukaflow/dukaflow/internal/orders"
)

type OrderHandler struct {
	service *orders.Service
	logger  *zap.Logger
}

func NewOrderHandler(service *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

func orderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order ID")
		return 0, false
	}
	return id, true
}

// Create places an order from the caller's cart.
func (h *OrderHandler) Create(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := middleware.GetPrincipal(c)
	view, err := h.service.CreateOrder(c.Request.Context(), p, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": view})
}

// List returns the caller's orders, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	views, err := h.service.ListOrders(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": views})
}

// Details returns one order with its line items.
func (h *OrderHandler) Details(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	p, _ := middleware.GetPrincipal(c)
	view, items, err := h.service.GetOrderDetails(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": view, "items": items})
}

// Cancel cancels the caller's pending order and restores its stock.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	p, _ := middleware.GetPrincipal(c)
	if err := h.service.CancelOrder(c.Request.Context(), p, id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled"})
}

// ApprovePayment marks a pending order as paid (admin).
func (h *OrderHandler) ApprovePayment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req models.ApprovePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := middleware.GetPrincipal(c)
	if err := h.service.ApprovePayment(c.Request.Context(), p, id, req.PaymentMethod); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment approved"})
}

// RejectPayment fails a pending order's payment and restores stock (admin).
func (h *OrderHandler) RejectPayment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	// The reason is optional, so an empty body is fine.
	var req models.RejectPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	p, _ := middleware.GetPrincipal(c)
	if err := h.service.RejectPayment(c.Request.Context(), p, id, req.Reason); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment rejected"})
}

// PendingPayments is the admin queue of orders awaiting approval.
func (h *OrderHandler) PendingPayments(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	pending, err := h.service.PendingPayments(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": pending})
}

// AdminList returns every order, optionally filtered by order status.
func (h *OrderHandler) AdminList(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	views, err := h.service.AdminListOrders(c.Request.Context(), p, c.Query("status"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": views})
}

// Items returns any order's line items (admin).
func (h *OrderHandler) Items(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	p, _ := middleware.GetPrincipal(c)
	items, err := h.service.AdminOrderItems(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// Customers is the admin report of customers with order totals.
func (h *OrderHandler) Customers(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	customers, err := h.service.Customers(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customers": customers})
}
