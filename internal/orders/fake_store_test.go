package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
	"github.com/dukaflow/dukaflow/internal/money"
)

// fakeStore mirrors the transactional semantics of the Postgres store in
// memory: mutations either fully apply or leave nothing behind.
type fakeStore struct {
	products    map[int]*models.Product
	orders      map[int]*models.Order
	items       map[int][]models.OrderItem
	users       map[int]*models.User
	nextOrderID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:    make(map[int]*models.Product),
		orders:      make(map[int]*models.Order),
		items:       make(map[int][]models.OrderItem),
		users:       make(map[int]*models.User),
		nextOrderID: 1,
	}
}

func (s *fakeStore) addProduct(id int, name string, price float64, stock int) {
	s.products[id] = &models.Product{ID: id, Name: name, Price: price, Stock: stock}
}

func (s *fakeStore) CreateOrder(_ context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error) {
	order := &models.Order{
		CustomerID:    customerID,
		OrderStatus:   models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		OrderDate:     time.Now(),
	}

	// Stage stock changes; apply only on full success.
	staged := make(map[int]int)
	for _, in := range items {
		p, ok := s.products[in.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", in.ProductID, db.ErrProductNotFound)
		}
		remaining := p.Stock - staged[in.ProductID] - in.Quantity
		if remaining < 0 {
			return nil, fmt.Errorf("%s: %w", p.Name, db.ErrInsufficientStock)
		}
		staged[in.ProductID] += in.Quantity

		lineSubtotal := money.Round2(p.Price * float64(in.Quantity))
		order.Subtotal = money.Round2(order.Subtotal + lineSubtotal)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   in.ProductID,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitPrice:   p.Price,
			Subtotal:    lineSubtotal,
		})
	}

	for id, qty := range staged {
		s.products[id].Stock -= qty
	}

	order.ID = s.nextOrderID
	s.nextOrderID++
	order.TaxAmount = money.Round2(order.Subtotal * db.TaxRate)
	order.TotalAmount = money.Round2(order.Subtotal + order.TaxAmount)
	order.OrderNumber = fmt.Sprintf("ORD-TEST-%06d", order.ID)
	for i := range order.Items {
		order.Items[i].ID = i + 1
		order.Items[i].OrderID = order.ID
	}

	stored := *order
	s.orders[order.ID] = &stored
	s.items[order.ID] = append([]models.OrderItem(nil), order.Items...)
	return order, nil
}

func (s *fakeStore) OrderByID(_ context.Context, orderID int) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeStore) OrderItems(_ context.Context, orderID int) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), s.items[orderID]...), nil
}

func (s *fakeStore) OrdersByCustomer(_ context.Context, customerID int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeStore) AllOrders(_ context.Context, status string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if status == "" || o.OrderStatus == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeStore) PendingPayments(_ context.Context) ([]models.PendingPayment, error) {
	var out []models.PendingPayment
	for _, o := range s.orders {
		if o.PaymentStatus == models.PaymentStatusPending && o.OrderStatus != models.OrderStatusCancelled {
			out = append(out, models.PendingPayment{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				CustomerID:  o.CustomerID,
				TotalAmount: o.TotalAmount,
				OrderDate:   o.OrderDate,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *fakeStore) Customers(_ context.Context) ([]models.CustomerSummary, error) {
	var out []models.CustomerSummary
	for _, u := range s.users {
		out = append(out, models.CustomerSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func (s *fakeStore) ApprovePayment(_ context.Context, orderID, adminID int, paymentMethod string) error {
	o, ok := s.orders[orderID]
	if !ok || o.PaymentStatus != models.PaymentStatusPending {
		return db.ErrOrderNotPending
	}
	now := time.Now()
	o.PaymentStatus = models.PaymentStatusPaid
	o.PaymentDate = &now
	o.PaymentMethod = paymentMethod
	o.ApprovedBy = &adminID
	return nil
}

func (s *fakeStore) RestoreOrder(_ context.Context, orderID, actorID int, reason string) error {
	o, ok := s.orders[orderID]
	if !ok || o.PaymentStatus != models.PaymentStatusPending {
		return db.ErrOrderNotPending
	}
	o.PaymentStatus = models.PaymentStatusFailed
	o.OrderStatus = models.OrderStatusCancelled
	o.StatusReason = reason
	o.ApprovedBy = &actorID
	for _, item := range s.items[orderID] {
		s.products[item.ProductID].Stock += item.Quantity
	}
	return nil
}

type fakePublisher struct {
	events []models.OrderEvent
	err    error
}

func (p *fakePublisher) PublishOrderEvent(event models.OrderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) InvalidateCatalog(context.Context) { f.calls++ }
