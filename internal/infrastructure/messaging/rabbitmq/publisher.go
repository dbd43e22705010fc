// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// PublishOrderPlaced sends the event as a persistent JSON message on the order queue
func (c *Client) PublishOrderPlaced(ctx context.Context, event order.OrderPlacedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return ErrChannelClosed
	}

	err = c.channel.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.OrderID,
		Type:         event.Type,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"queue":    c.queue,
		"order_id": event.OrderID,
	}).Debug("Order event published")
	return nil
}
