// internal/infrastructure/messaging/rabbitmq/client.go
package rabbitmq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// ErrChannelClosed is returned when publishing or consuming after Close
var ErrChannelClosed = errors.New("rabbitmq channel is not available")

// Config holds RabbitMQ connection details
type Config struct {
	URL   string
	Queue string
}

// channel is the subset of *amqp.Channel the client uses
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel. The channel is shared
// between publishers, so Publish calls are serialized.
type Client struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *logrus.Logger
	mu      sync.Mutex
}

// NewClient dials RabbitMQ, opens a channel and declares the durable order queue
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	logger.WithField("queue", cfg.Queue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

func newClientWithChannel(ch channel, queue string, logger *logrus.Logger) *Client {
	return &Client{channel: ch, queue: queue, logger: logger}
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}
