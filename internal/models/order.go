package models

import "time"

// Order statuses. Only "cancelled" is currently reachable through the API;
// "processing" and "completed" exist in the schema and admin filters but no
// endpoint transitions an order into them.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses. "paid" and "failed" are terminal.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Order struct {
	ID            int        `json:"id"`
	OrderNumber   string     `json:"order_number"`
	CustomerID    int        `json:"customer_id"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Subtotal      float64    `json:"subtotal"`
	TaxAmount     float64    `json:"tax_amount"`
	TotalAmount   float64    `json:"total_amount"`
	OrderStatus   string     `json:"order_status"`
	PaymentStatus string     `json:"payment_status"`
	OrderDate     time.Time  `json:"order_date"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	ApprovedBy    *int       `json:"approved_by,omitempty"`
	StatusReason  string     `json:"status_reason,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// CreateOrderItemRequest is one cart line at checkout. Price is accepted for
// wire compatibility with the storefront cart but never trusted: unit prices
// are re-read from the catalog inside the order transaction.
type CreateOrderItemRequest struct {
	ProductID int     `json:"id" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required,gte=1"`
}

type CreateOrderRequest struct {
	Items []CreateOrderItemRequest `json:"items" binding:"required"`
}

// OrderItemInput is a validated order line handed to the store. It carries
// no price: unit prices are resolved from the catalog inside the order
// transaction.
type OrderItemInput struct {
	ProductID int
	Quantity  int
}

type ApprovePaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// PendingPayment is one row of the admin pending-payments report.
type PendingPayment struct {
	OrderID       int       `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerID    int       `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	TotalAmount   float64   `json:"total_amount"`
	OrderDate     time.Time `json:"order_date"`
}

// CustomerSummary is one row of the admin customers report.
type CustomerSummary struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OrderCount int       `json:"order_count"`
	TotalSpent float64   `json:"total_spent"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusHistoryEntry is an audit row written by the worker from order
// lifecycle events.
type StatusHistoryEntry struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"order_id"`
	Event     string    `json:"event"`
	ActorID   int       `json:"actor_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
