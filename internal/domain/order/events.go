// internal/domain/order/events.go
package order

import (
	"context"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/money"
)

// EventOrderPlaced is the routing name of the event emitted after checkout
const EventOrderPlaced = "order.placed"

// OrderPlacedEvent is published once an order has been persisted
type OrderPlacedEvent struct {
	Type          string       `json:"type"`
	OrderID       string       `json:"order_id"`
	UserID        string       `json:"user_id"`
	TotalAmount   money.Amount `json:"total_amount"`
	ItemCount     int64        `json:"item_count"`
	PaymentMethod string       `json:"payment_method"`
	OrderDate     time.Time    `json:"order_date"`
}

// NewOrderPlacedEvent builds the event payload for an order
func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		Type:          EventOrderPlaced,
		OrderID:       o.ID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		ItemCount:     o.ItemCount(),
		PaymentMethod: o.PaymentMethod,
		OrderDate:     o.OrderDate,
	}
}

// EventPublisher delivers order events to the message broker
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}
