package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/models"
)

// OrderConsumer turns lifecycle events into order_status_history rows and
// logs low-stock alerts. Stock itself is never mutated here: every stock
// movement happens inside the order transaction that emitted the event.
type OrderConsumer struct {
	orders            *db.OrderRepository
	analytics         *db.AnalyticsRepository
	lowStockThreshold int
	logger            *zap.Logger
}

func NewOrderConsumer(orders *db.OrderRepository, analytics *db.AnalyticsRepository, lowStockThreshold int, logger *zap.Logger) *OrderConsumer {
	return &OrderConsumer{
		orders:            orders,
		analytics:         analytics,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// Run processes events until the delivery channel closes.
func (c *OrderConsumer) Run(ctx context.Context, messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			c.logger.Error("failed to parse order event", zap.Error(err))
			msg.Nack(false, false) // don't requeue bad messages
			continue
		}

		if err := c.handle(ctx, event); err != nil {
			c.logger.Error("failed to process order event",
				zap.String("type", event.Type),
				zap.Int("order_id", event.OrderID),
				zap.Error(err))
			msg.Nack(false, true) // requeue for retry
			continue
		}

		msg.Ack(false)
		c.logger.Info("order event processed",
			zap.String("type", event.Type),
			zap.Int("order_id", event.OrderID))
	}
}

func (c *OrderConsumer) handle(ctx context.Context, event models.OrderEvent) error {
	if err := c.orders.InsertStatusHistory(ctx, event.OrderID, event.Type, event.ActorID, event.Reason); err != nil {
		return err
	}

	if event.Type == models.EventOrderCreated {
		c.alertLowStock(ctx, event)
	}
	return nil
}

func (c *OrderConsumer) alertLowStock(ctx context.Context, event models.OrderEvent) {
	ids := make([]int, 0, len(event.Items))
	for _, item := range event.Items {
		ids = append(ids, item.ProductID)
	}

	low, err := c.analytics.LowStockAmong(ctx, c.lowStockThreshold, ids)
	if err != nil {
		c.logger.Warn("low stock check failed", zap.Int("order_id", event.OrderID), zap.Error(err))
		return
	}
	for _, p := range low {
		c.logger.Warn("product low on stock",
			zap.Int("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock))
	}
}
