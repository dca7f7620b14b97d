// Package orders implements the order lifecycle: placing an order,
// cancelling it, and approving or rejecting its payment, keeping totals,
// statuses and product stock mutually consistent. The service is free of
// transport concerns: callers hand it an explicit authenticated principal.
package orders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/auth"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrAdminOnly       = errors.New("admin access required")
)

// Store is the transactional order storage the service drives. Mutating
// calls are atomic: they either fully apply or leave no trace.
type Store interface {
	CreateOrder(ctx context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error)
	OrderByID(ctx context.Context, orderID int) (*models.Order, error)
	OrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error)
	OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error)
	AllOrders(ctx context.Context, status string) ([]models.Order, error)
	PendingPayments(ctx context.Context) ([]models.PendingPayment, error)
	Customers(ctx context.Context) ([]models.CustomerSummary, error)
	ApprovePayment(ctx context.Context, orderID, adminID int, paymentMethod string) error
	RestoreOrder(ctx context.Context, orderID, actorID int, reason string) error
}

// EventPublisher emits lifecycle events after a mutation commits.
// Publishing is best-effort and never fails the operation.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// CacheInvalidator drops cached catalog reads after stock moves.
type CacheInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

type Service struct {
	store     Store
	publisher EventPublisher
	cache     CacheInvalidator
	logger    *zap.Logger
}

// NewService wires the lifecycle service. publisher and cache may be nil.
func NewService(store Store, publisher EventPublisher, cache CacheInvalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, publisher: publisher, cache: cache, logger: logger}
}

// CreateOrder places an order for the caller. Quantities are validated here;
// pricing, stock checks and all writes happen atomically in the store, which
// ignores any client-supplied prices.
func (s *Service) CreateOrder(ctx context.Context, p auth.Principal, req models.CreateOrderRequest) (*View, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		items = append(items, models.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.store.CreateOrder(ctx, p.UserID, items)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(eventFromOrder(models.EventOrderCreated, order, p.UserID, ""))

	view := NewView(order)
	return &view, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, p auth.Principal) ([]View, error) {
	orders, err := s.store.OrdersByCustomer(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return NewViews(orders), nil
}

// GetOrderDetails returns an order with its items. Admins may view any
// order; customers only their own. An order that is absent or not owned by
// the caller looks the same: not found.
func (s *Service) GetOrderDetails(ctx context.Context, p auth.Principal, orderID int) (*View, []models.OrderItem, error) {
	order, err := s.authorizedOrder(ctx, p, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	view := NewView(order)
	return &view, items, nil
}

// CancelOrder lets a customer cancel their own order while its payment is
// still pending. It is the same state transition as an admin rejection,
// with the customer as actor.
func (s *Service) CancelOrder(ctx context.Context, p auth.Principal, orderID int) error {
	order, err := s.authorizedOrder(ctx, p, orderID)
	if err != nil {
		return err
	}
	return s.restore(ctx, order, p.UserID, "cancelled by customer", models.EventOrderCancelled)
}

// ApprovePayment marks a pending order as paid. Stock is untouched; it was
// decremented when the order was placed.
func (s *Service) ApprovePayment(ctx context.Context, p auth.Principal, orderID int, paymentMethod string) error {
	if !p.IsAdmin() {
		return ErrAdminOnly
	}

	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.store.ApprovePayment(ctx, orderID, p.UserID, paymentMethod); err != nil {
		return err
	}

	event := eventFromOrder(models.EventPaymentApproved, order, p.UserID, "")
	event.PaymentMethod = paymentMethod
	s.publish(event)
	return nil
}

// RejectPayment fails a pending order's payment and restores its stock.
func (s *Service) RejectPayment(ctx context.Context, p auth.Principal, orderID int, reason string) error {
	if !p.IsAdmin() {
		return ErrAdminOnly
	}

	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "payment rejected"
	}
	return s.restore(ctx, order, p.UserID, reason, models.EventPaymentRejected)
}

// restore runs the shared cancel/reject transition. The pending-payment
// precondition is enforced inside the store transaction.
func (s *Service) restore(ctx context.Context, order *models.Order, actorID int, reason, eventType string) error {
	if err := s.store.RestoreOrder(ctx, order.ID, actorID, reason); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.publish(eventFromOrder(eventType, order, actorID, reason))
	return nil
}

// PendingPayments is the admin report of orders awaiting approval.
func (s *Service) PendingPayments(ctx context.Context, p auth.Principal) ([]models.PendingPayment, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.store.PendingPayments(ctx)
}

// AdminListOrders lists every order, optionally filtered by order status.
func (s *Service) AdminListOrders(ctx context.Context, p auth.Principal, status string) ([]View, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	orders, err := s.store.AllOrders(ctx, status)
	if err != nil {
		return nil, err
	}
	return NewViews(orders), nil
}

// AdminOrderItems returns any order's line items.
func (s *Service) AdminOrderItems(ctx context.Context, p auth.Principal, orderID int) ([]models.OrderItem, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if _, err := s.store.OrderByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.OrderItems(ctx, orderID)
}

// Customers is the admin report of customers with order totals.
func (s *Service) Customers(ctx context.Context, p auth.Principal) ([]models.CustomerSummary, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.store.Customers(ctx)
}

// authorizedOrder loads an order and collapses "absent" and "not yours"
// into the same not-found error so order existence never leaks.
func (s *Service) authorizedOrder(ctx context.Context, p auth.Principal, orderID int) (*models.Order, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && order.CustomerID != p.UserID {
		return nil, db.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateCatalog(ctx)
	}
}

func (s *Service) publish(event models.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", event.Type),
			zap.Int("order_id", event.OrderID),
			zap.Error(err))
	}
}
