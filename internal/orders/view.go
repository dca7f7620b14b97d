package orders

import (
	"time"

	"github.com/dukaflow/dukaflow/internal/models"
	"github.com/dukaflow/dukaflow/internal/money"
)

const displayDateLayout = "2 Jan 2006, 3:04 PM"

// View is an order annotated with display strings. Responses carry both the
// numeric fields and the pre-formatted ones the storefront renders directly.
type View struct {
	models.Order
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedTax      string `json:"formatted_tax"`
	FormattedTotal    string `json:"formatted_total"`
	FormattedDate     string `json:"formatted_date"`
}

func NewView(o *models.Order) View {
	return View{
		Order:             *o,
		FormattedSubtotal: money.Format(o.Subtotal),
		FormattedTax:      money.Format(o.TaxAmount),
		FormattedTotal:    money.Format(o.TotalAmount),
		FormattedDate:     o.OrderDate.Format(displayDateLayout),
	}
}

func NewViews(orders []models.Order) []View {
	views := make([]View, 0, len(orders))
	for i := range orders {
		views = append(views, NewView(&orders[i]))
	}
	return views
}

func eventFromOrder(eventType string, o *models.Order, actorID int, reason string) models.OrderEvent {
	event := models.OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		ActorID:     actorID,
		Reason:      reason,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
	for _, item := range o.Items {
		event.Items = append(event.Items, models.OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return event
}
