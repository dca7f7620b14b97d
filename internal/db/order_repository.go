package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukaflow/dukaflow/internal/models"
	"github.com/dukaflow/dukaflow/internal/money"
)

// TaxRate is the VAT applied to every order subtotal.
const TaxRate = 0.10

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// newOrderNumber builds a human-readable unique order number like
// ORD-20260901-3FA2B1.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// CreateOrder places an order in a single transaction: unit prices are
// re-read from the catalog (client prices are never trusted), stock is
// decremented with a conditional update so it can never go negative, and the
// order plus its items are inserted. Any failure rolls the whole thing back.
func (r *OrderRepository) CreateOrder(ctx context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order := &models.Order{
		CustomerID:    customerID,
		OrderStatus:   models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	for _, item := range items {
		var name string
		var price float64
		err := tx.QueryRowContext(ctx,
			"SELECT name, price FROM products WHERE id = $1", item.ProductID,
		).Scan(&name, &price)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read product %d: %w", item.ProductID, err)
		}

		// Atomic conditional decrement: zero rows affected means another
		// checkout got there first or stock was short to begin with.
		result, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrInsufficientStock)
		}

		lineSubtotal := money.Round2(price * float64(item.Quantity))
		order.Subtotal = money.Round2(order.Subtotal + lineSubtotal)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			Subtotal:    lineSubtotal,
		})
	}

	order.TaxAmount = money.Round2(order.Subtotal * TaxRate)
	order.TotalAmount = money.Round2(order.Subtotal + order.TaxAmount)
	order.OrderNumber = newOrderNumber(time.Now())

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, customer_id, subtotal, tax_amount, total_amount, order_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, order_date`,
		order.OrderNumber, order.CustomerID, order.Subtotal, order.TaxAmount, order.TotalAmount,
		order.OrderStatus, order.PaymentStatus,
	).Scan(&order.ID, &order.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, order.Items[i].ProductID, order.Items[i].Quantity,
			order.Items[i].UnitPrice, order.Items[i].Subtotal,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, nil
}

const orderColumns = `o.id, o.order_number, o.customer_id, u.name, o.subtotal, o.tax_amount, o.total_amount,
	o.order_status, o.payment_status, o.order_date, o.payment_date, o.payment_method, o.approved_by, o.status_reason`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	var paymentDate sql.NullTime
	var approvedBy sql.NullInt64
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.Subtotal, &o.TaxAmount,
		&o.TotalAmount, &o.OrderStatus, &o.PaymentStatus, &o.OrderDate, &paymentDate, &o.PaymentMethod,
		&approvedBy, &o.StatusReason)
	if err != nil {
		return nil, err
	}
	if paymentDate.Valid {
		o.PaymentDate = &paymentDate.Time
	}
	if approvedBy.Valid {
		v := int(approvedBy.Int64)
		o.ApprovedBy = &v
	}
	return &o, nil
}

// OrderByID returns an order header or ErrOrderNotFound.
func (r *OrderRepository) OrderByID(ctx context.Context, orderID int) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN admin_users u ON u.id = o.customer_id
		WHERE o.id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// OrderItems returns the line items of an order.
func (r *OrderRepository) OrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// OrdersByCustomer returns a customer's orders, newest first.
func (r *OrderRepository) OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN admin_users u ON u.id = o.customer_id
		WHERE o.customer_id = $1
		ORDER BY o.order_date DESC, o.id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// AllOrders returns every order, optionally filtered by order_status.
func (r *OrderRepository) AllOrders(ctx context.Context, status string) ([]models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o JOIN admin_users u ON u.id = o.customer_id`
	var args []interface{}
	if status != "" {
		query += " WHERE o.order_status = $1"
		args = append(args, status)
	}
	query += " ORDER BY o.order_date DESC, o.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// PendingPayments lists orders awaiting payment approval, oldest first.
func (r *OrderRepository) PendingPayments(ctx context.Context) ([]models.PendingPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_number, o.customer_id, u.name, u.email, o.total_amount, o.order_date
		FROM orders o JOIN admin_users u ON u.id = o.customer_id
		WHERE o.payment_status = 'pending' AND o.order_status <> 'cancelled'
		ORDER BY o.order_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending payments: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingPayment
	for rows.Next() {
		var p models.PendingPayment
		if err := rows.Scan(&p.OrderID, &p.OrderNumber, &p.CustomerID, &p.CustomerName, &p.CustomerEmail, &p.TotalAmount, &p.OrderDate); err != nil {
			return nil, fmt.Errorf("failed to scan pending payment: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// Customers lists customers with their order counts and paid totals.
func (r *OrderRepository) Customers(ctx context.Context) ([]models.CustomerSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COUNT(o.id),
		       COALESCE(SUM(o.total_amount) FILTER (WHERE o.payment_status = 'paid'), 0),
		       u.created_at
		FROM admin_users u LEFT JOIN orders o ON o.customer_id = u.id
		WHERE u.role = 'customer'
		GROUP BY u.id
		ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.CustomerSummary
	for rows.Next() {
		var c models.CustomerSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.OrderCount, &c.TotalSpent, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ApprovePayment marks a pending order as paid. The pending precondition is
// part of the UPDATE, so a concurrent approve/reject cannot double-fire.
// Stock is untouched: it was already decremented at order creation.
func (r *OrderRepository) ApprovePayment(ctx context.Context, orderID, adminID int, paymentMethod string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'paid', payment_date = NOW(), payment_method = $2, approved_by = $3
		WHERE id = $1 AND payment_status = 'pending'`,
		orderID, paymentMethod, adminID,
	)
	if err != nil {
		return fmt.Errorf("failed to approve payment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrOrderNotPending
	}
	return nil
}

// RestoreOrder is the shared cancel/reject transition: it fails the payment,
// cancels the order, records who did it and why, and returns every line
// item's quantity to product stock — all in one transaction.
func (r *OrderRepository) RestoreOrder(ctx context.Context, orderID, actorID int, reason string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'failed', order_status = 'cancelled', status_reason = $2, approved_by = $3
		WHERE id = $1 AND payment_status = 'pending'`,
		orderID, reason, actorID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrOrderNotPending
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT product_id, quantity FROM order_items WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	type line struct {
		productID int
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read order items: %w", err)
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
			l.quantity, l.productID,
		); err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", l.productID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}

// InsertStatusHistory appends an audit row; written by the worker from
// lifecycle events.
func (r *OrderRepository) InsertStatusHistory(ctx context.Context, orderID int, event string, actorID int, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, event, actor_id, reason)
		VALUES ($1, $2, $3, $4)`,
		orderID, event, actorID, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}
	return nil
}
