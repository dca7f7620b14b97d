package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dukaflow/dukaflow/internal/auth"
	"github.com/dukaflow/dukaflow/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Orders    *OrderHandler
	Analytics *AnalyticsHandler
	Export    *ExportHandler
	Backup    *BackupHandler
}

// NewRouter mounts the API. Everything under /api except auth requires a
// valid token; admin routes additionally require the admin role.
func NewRouter(h Handlers, jwtService *auth.JWTService) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(jwtService))
	{
		authed.GET("/auth/me", h.Auth.Me)

		authed.GET("/products", h.Products.List)
		authed.GET("/products/categories", h.Products.Categories)
		authed.GET("/products/stats", h.Products.Stats)
		authed.GET("/products/:id", h.Products.Get)

		authed.POST("/orders", h.Orders.Create)
		authed.GET("/orders", h.Orders.List)
		authed.GET("/orders/:id", h.Orders.Details)
		authed.POST("/orders/:id/cancel", h.Orders.Cancel)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireAuth(jwtService), middleware.RequireAdmin())
	{
		admin.POST("/products", h.Products.Create)
		admin.PUT("/products/:id", h.Products.Update)
		admin.DELETE("/products/:id", h.Products.Delete)

		admin.GET("/analytics/summary", h.Analytics.Summary)
		admin.GET("/analytics/categories", h.Analytics.CategoryBreakdown)
		admin.GET("/analytics/price-ranges", h.Analytics.PriceBuckets)
		admin.GET("/analytics/stock-levels", h.Analytics.StockBuckets)
		admin.GET("/analytics/low-stock", h.Analytics.LowStock)

		admin.GET("/export/products.csv", h.Export.ProductsCSV)
		admin.GET("/backup/products", h.Backup.Download)
		admin.POST("/backup/products", h.Backup.Restore)

		admin.GET("/admin/orders", h.Orders.AdminList)
		admin.GET("/admin/orders/pending-payments", h.Orders.PendingPayments)
		admin.GET("/admin/orders/:id/items", h.Orders.Items)
		admin.GET("/admin/customers", h.Orders.Customers)
		admin.POST("/admin/orders/:id/approve-payment", h.Orders.ApprovePayment)
		admin.POST("/admin/orders/:id/reject-payment", h.Orders.RejectPayment)
	}

	return router
}
