package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// CheckoutQueue receives one message per completed checkout.
	CheckoutQueue = "checkout_events"
	// CheckoutCompletedType is the AMQP message type of CheckoutCompleted.
	CheckoutCompletedType = "checkout.completed"
)

// ErrClosed is returned when the channel has already been closed.
var ErrClosed = errors.New("rabbitmq channel is not available")

// CheckoutCompleted is published after an order was accepted and the cart cleared.
type CheckoutCompleted struct {
	OrderID       int64     `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserKey       string    `json:"userKey"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalItems    int       `json:"totalItems"`
	TotalPrice    string    `json:"totalPrice"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the checkout queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to open channel: %w", err), conn.Close())
	}

	if _, err := declareCheckoutQueue(ch); err != nil {
		return nil, multierr.Combine(err, ch.Close(), conn.Close())
	}

	logger.Info("rabbitmq connected", zap.String("queue", CheckoutQueue))
	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareCheckoutQueue(ch *amqp.Channel) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(
		CheckoutQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", CheckoutQueue, err)
	}
	return queue, nil
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.channel != nil {
		if cerr := c.channel.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close channel: %w", cerr))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if cerr := c.conn.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close connection: %w", cerr))
		}
		c.conn = nil
	}
	return err
}

// Publish sends a persistent JSON message through the default exchange.
func (c *Client) Publish(routingKey, messageType string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return ErrClosed
	}
	err := c.channel.Publish(
		"", // default exchange
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         messageType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishCheckoutCompleted publishes a checkout event to the checkout queue.
func (c *Client) PublishCheckoutCompleted(event CheckoutCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout event: %w", err)
	}
	if err := c.Publish(CheckoutQueue, CheckoutCompletedType, body); err != nil {
		return err
	}
	c.logger.Debug("checkout event published", zap.String("order_number", event.OrderNumber))
	return nil
}

// ConsumeCheckoutEvents delivers checkout events to handler until ctx is
// cancelled or the channel closes. Messages are acknowledged manually.
func (c *Client) ConsumeCheckoutEvents(ctx context.Context, handler func(CheckoutCompleted) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return ErrClosed
	}

	queue, err := declareCheckoutQueue(ch)
	if err != nil {
		return err
	}
	msgs, err := ch.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("checkout consumer stopped: channel closed")
					return
				}
				handleDelivery(c.logger, msg, handler)
			}
		}
	}()
	return nil
}

// handleDelivery acks processed messages, requeues messages whose handler
// failed and drops messages that cannot be decoded.
func handleDelivery(logger *zap.Logger, msg amqp.Delivery, handler func(CheckoutCompleted) error) {
	var event CheckoutCompleted
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Warn("dropping malformed checkout event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := handler(event); err != nil {
		logger.Warn("checkout event handler failed", zap.String("order_number", event.OrderNumber), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error("failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}
