package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaflow/dukaflow/internal/auth"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
)

var (
	customer      = auth.Principal{UserID: 10, Email: "wanjiku@example.com", Role: models.RoleCustomer}
	otherCustomer = auth.Principal{UserID: 11, Email: "otieno@example.com", Role: models.RoleCustomer}
	admin         = auth.Principal{UserID: 1, Email: "owner@example.com", Role: models.RoleAdmin}
)

func newTestService() (*Service, *fakeStore, *fakePublisher, *fakeInvalidator) {
	store := newFakeStore()
	store.addProduct(1, "Maize Flour 2kg", 100, 10)
	store.addProduct(2, "Cooking Oil 1L", 50, 5)

	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	return NewService(store, pub, inv, nil), store, pub, inv
}

func twoLineRequest() models.CreateOrderRequest {
	// Client-supplied prices are deliberately wrong; the store must ignore
	// them and price from the catalog.
	return models.CreateOrderRequest{Items: []models.CreateOrderItemRequest{
		{ProductID: 1, Price: 1, Quantity: 2},
		{ProductID: 2, Price: 9999, Quantity: 1},
	}}
}

func TestCreateOrder_TotalsAndStock(t *testing.T) {
	svc, store, pub, inv := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	assert.Equal(t, 250.0, view.Subtotal)
	assert.Equal(t, 25.0, view.TaxAmount)
	assert.Equal(t, 275.0, view.TotalAmount)
	assert.Equal(t, view.Subtotal+view.TaxAmount, view.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, view.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, view.PaymentStatus)
	assert.Equal(t, "KSh 275.00", view.FormattedTotal)
	assert.NotEmpty(t, view.OrderNumber)

	// Stock decremented by exactly the ordered quantities.
	assert.Equal(t, 8, store.products[1].Stock)
	assert.Equal(t, 4, store.products[2].Stock)

	// Unit prices came from the catalog, not the request.
	require.Len(t, view.Items, 2)
	assert.Equal(t, 100.0, view.Items[0].UnitPrice)
	assert.Equal(t, 50.0, view.Items[1].UnitPrice)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventOrderCreated, pub.events[0].Type)
	assert.Len(t, pub.events[0].Items, 2)
	assert.Equal(t, 1, inv.calls)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, store, pub, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, store.orders)
	assert.Empty(t, pub.events)
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	svc, store, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 10, store.products[1].Stock)
}

func TestCreateOrder_InsufficientStock_NoPartialState(t *testing.T) {
	svc, store, pub, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 6}, // only 5 in stock
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrInsufficientStock)

	// All-or-nothing: the first line's decrement must not survive.
	assert.Equal(t, 10, store.products[1].Stock)
	assert.Equal(t, 5, store.products[2].Stock)
	assert.Empty(t, store.orders)
	assert.Empty(t, pub.events)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 99, Quantity: 1}},
	})
	assert.ErrorIs(t, err, db.ErrProductNotFound)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	svc, store, pub, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(context.Background(), customer, view.ID))

	order := store.orders[view.ID]
	assert.Equal(t, models.OrderStatusCancelled, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, "cancelled by customer", order.StatusReason)
	assert.Equal(t, 10, store.products[1].Stock)
	assert.Equal(t, 5, store.products[2].Stock)

	require.Len(t, pub.events, 2)
	assert.Equal(t, models.EventOrderCancelled, pub.events[1].Type)
}

func TestCancelOrder_NotOwner_LooksLikeNotFound(t *testing.T) {
	svc, store, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), otherCustomer, view.ID)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)
	assert.Equal(t, models.PaymentStatusPending, store.orders[view.ID].PaymentStatus)
}

func TestCancelOrder_AlreadyPaid(t *testing.T) {
	svc, store, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ApprovePayment(context.Background(), admin, view.ID, "mpesa"))

	err = svc.CancelOrder(context.Background(), customer, view.ID)
	assert.ErrorIs(t, err, db.ErrOrderNotPending)

	// Paid is terminal; nothing moved.
	assert.Equal(t, models.PaymentStatusPaid, store.orders[view.ID].PaymentStatus)
	assert.Equal(t, 8, store.products[1].Stock)
}

func TestApprovePayment_StockNeutral(t *testing.T) {
	svc, store, pub, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ApprovePayment(context.Background(), admin, view.ID, "mpesa"))

	order := store.orders[view.ID]
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaymentDate)
	assert.Equal(t, "mpesa", order.PaymentMethod)
	require.NotNil(t, order.ApprovedBy)
	assert.Equal(t, admin.UserID, *order.ApprovedBy)
	// Approval never touches stock.
	assert.Equal(t, 8, store.products[1].Stock)
	assert.Equal(t, 4, store.products[2].Stock)
	// order_status is an independent axis and stays pending.
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)

	assert.Equal(t, models.EventPaymentApproved, pub.events[1].Type)
	assert.Equal(t, "mpesa", pub.events[1].PaymentMethod)
}

func TestApprovePayment_NonAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	err = svc.ApprovePayment(context.Background(), customer, view.ID, "mpesa")
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestApprovePayment_Terminal(t *testing.T) {
	svc, _, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ApprovePayment(context.Background(), admin, view.ID, "mpesa"))
	err = svc.ApprovePayment(context.Background(), admin, view.ID, "cash")
	assert.ErrorIs(t, err, db.ErrOrderNotPending)
}

func TestRejectPayment_RestoresStockAndIsTerminal(t *testing.T) {
	svc, store, pub, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, svc.RejectPayment(context.Background(), admin, view.ID, "card declined"))

	order := store.orders[view.ID]
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, "card declined", order.StatusReason)
	assert.Equal(t, 10, store.products[1].Stock)
	assert.Equal(t, 5, store.products[2].Stock)

	// Terminal: a second rejection fails and restores nothing twice.
	err = svc.RejectPayment(context.Background(), admin, view.ID, "again")
	assert.ErrorIs(t, err, db.ErrOrderNotPending)
	assert.Equal(t, 10, store.products[1].Stock)

	assert.Equal(t, models.EventPaymentRejected, pub.events[1].Type)
}

func TestRejectPayment_NonAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	err = svc.RejectPayment(context.Background(), customer, view.ID, "nope")
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestGetOrderDetails_Authorization(t *testing.T) {
	svc, _, _, _ := newTestService()

	view, err := svc.CreateOrder(context.Background(), customer, twoLineRequest())
	require.NoError(t, err)

	// Owner sees the order with items.
	got, items, err := svc.GetOrderDetails(context.Background(), customer, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)
	assert.Len(t, items, 2)

	// Another customer gets not-found, never the data.
	_, _, err = svc.GetOrderDetails(context.Background(), otherCustomer, view.ID)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)

	// Admin sees any order.
	_, _, err = svc.GetOrderDetails(context.Background(), admin, view.ID)
	assert.NoError(t, err)
}

func TestListOrders_NewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService()

	first, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 2, Quantity: 1}},
	})
	require.NoError(t, err)

	views, err := svc.ListOrders(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, first.ID, views[1].ID)
	assert.NotEmpty(t, views[0].FormattedTotal)
	assert.NotEmpty(t, views[0].FormattedDate)
}

func TestAdminReports_RequireAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.PendingPayments(ctx, customer)
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = svc.AdminListOrders(ctx, customer, "")
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = svc.AdminOrderItems(ctx, customer, 1)
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = svc.Customers(ctx, customer)
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestPendingPayments_ExcludesResolvedOrders(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 2, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.ApprovePayment(ctx, admin, first.ID, "mpesa"))

	pending, err := svc.PendingPayments(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].OrderID)
}

func TestCreateOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	store := newFakeStore()
	store.addProduct(1, "Sugar 1kg", 120, 3)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(store, pub, nil, nil)

	view, err := svc.CreateOrder(context.Background(), customer, models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.products[1].Stock)
	assert.NotNil(t, view)
}
