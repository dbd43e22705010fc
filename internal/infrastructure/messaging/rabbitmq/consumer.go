// internal/infrastructure/messaging/rabbitmq/consumer.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// OrderHandler processes one decoded order-placed event
type OrderHandler func(ctx context.Context, event order.OrderPlacedEvent) error

// ConsumeOrderEvents starts a goroutine delivering queue messages to handler
// until ctx is cancelled or the channel closes. Messages are acked manually.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler OrderHandler) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return ErrChannelClosed
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.WithField("queue", c.queue).Info("Waiting for order events")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.WithField("queue", c.queue).Warn("Order event delivery channel closed")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

// handleDelivery acks on success, requeues on handler failure and drops
// messages that cannot be decoded, since redelivery would fail the same way.
func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler OrderHandler) {
	log := c.logger.WithFields(logrus.Fields{
		"queue":        c.queue,
		"delivery_tag": msg.DeliveryTag,
		"message_id":   msg.MessageId,
	})

	var event order.OrderPlacedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.WithError(err).Error("Dropping malformed order event")
		if err := msg.Nack(false, false); err != nil {
			log.WithError(err).Error("Failed to nack message")
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		log.WithError(err).Warn("Order event handler failed, requeueing")
		if err := msg.Nack(false, true); err != nil {
			log.WithError(err).Error("Failed to nack message")
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.WithError(err).Error("Failed to ack message")
	}
}

// LogOrderPlaced is the default consumer handler: it records the event in the service log
func LogOrderPlaced(logger *logrus.Logger) OrderHandler {
	return func(ctx context.Context, event order.OrderPlacedEvent) error {
		logger.WithFields(logrus.Fields{
			"order_id":       event.OrderID,
			"user_id":        event.UserID,
			"total_amount":   event.TotalAmount.String(),
			"item_count":     event.ItemCount,
			"payment_method": event.PaymentMethod,
		}).Info("Order placed")
		return nil
	}
}

// Chain runs handlers in order and stops at the first error
func Chain(handlers ...OrderHandler) OrderHandler {
	return func(ctx context.Context, event order.OrderPlacedEvent) error {
		for _, h := range handlers {
			if err := h(ctx, event); err != nil {
				return err
			}
		}
		return nil
	}
}
