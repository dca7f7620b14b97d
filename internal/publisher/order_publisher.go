package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/dukaflow/dukaflow/internal/messaging"
	"github.com/dukaflow/dukaflow/internal/models"
)

// OrderEventsQueue carries every order lifecycle event; the worker fans
// them into the audit trail and low-stock alerts.
const OrderEventsQueue = "order.events"

type OrderPublisher struct {
	mq *messaging.RabbitMQ
}

func NewOrderPublisher(mq *messaging.RabbitMQ) (*OrderPublisher, error) {
	if err := mq.DeclareQueue(OrderEventsQueue); err != nil {
		return nil, err
	}
	return &OrderPublisher{mq: mq}, nil
}

// PublishOrderEvent publishes a lifecycle event after its transaction has
// committed.
func (p *OrderPublisher) PublishOrderEvent(event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.mq.Publish(OrderEventsQueue, data)
}
