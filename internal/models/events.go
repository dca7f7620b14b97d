package models

import "time"

// Order lifecycle event types, published after the owning transaction
// commits.
const (
	EventOrderCreated    = "order.created"
	EventPaymentApproved = "order.payment_approved"
	EventPaymentRejected = "order.payment_rejected"
	EventOrderCancelled  = "order.cancelled"
)

type OrderEvent struct {
	Type          string           `json:"type"`
	OrderID       int              `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	CustomerID    int              `json:"customer_id"`
	ActorID       int              `json:"actor_id"`
	Reason        string           `json:"reason,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	TotalAmount   float64          `json:"total_amount"`
	Items         []OrderItemEvent `json:"items,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

type OrderItemEvent struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
