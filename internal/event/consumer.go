package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"practice-service/internal/models"

	"github.com/streadway/amqp"
)

// PaymentHandler applies a confirmed payment to the user's entitlements.
type PaymentHandler interface {
	HandlePaymentSucceeded(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) error
}

// PaymentConsumer listens for payment webhooks relayed by the billing
// system and tops up subscriptions.
type PaymentConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	handler   PaymentHandler
	enabled   bool
}

// PaymentEventData is the billing system's payment event payload.
type PaymentEventData struct {
	Type          string  `json:"type"`
	UserID        string  `json:"user_id"`
	PlanType      string  `json:"plan_type"`
	TransactionID string  `json:"transaction_id"`
	Provider      string  `json:"provider"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Timestamp     string  `json:"timestamp"`
}

func NewPaymentConsumer(amqpURL, exchange, queueName string, handler PaymentHandler) (*PaymentConsumer, error) {
	if amqpURL == "" {
		log.Println("Warning: RabbitMQ URI is empty, payment event consumption is disabled")
		return &PaymentConsumer{enabled: false}, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,
		"payment.succeeded",
		exchange,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &PaymentConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
		handler:   handler,
		enabled:   true,
	}, nil
}

func (c *PaymentConsumer) Start() error {
	if !c.enabled {
		log.Println("Payment event consumption is disabled")
		return nil
	}

	if err := c.channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
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
		for msg := range msgs {
			if err := c.processMessage(msg); err != nil {
				log.Printf("Failed to process payment message: %v", err)
				msg.Nack(false, true) // requeue
			} else {
				msg.Ack(false)
			}
		}
	}()

	log.Println("Payment event consumer started, waiting for messages...")
	return nil
}

func (c *PaymentConsumer) processMessage(msg amqp.Delivery) error {
	var event PaymentEventData
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal payment event: %w", err)
	}

	log.Printf("Processing payment event %s for user %s (plan %s)", event.Type, event.UserID, event.PlanType)

	if event.Type != "PAYMENT_SUCCESS" {
		log.Printf("Ignoring payment event type: %s", event.Type)
		return nil
	}
	if event.UserID == "" {
		log.Printf("No user ID in payment event, skipping")
		return nil
	}
	plan := models.PlanType(event.PlanType)
	if _, ok := models.PlanAllotments[plan]; !ok {
		return fmt.Errorf("unknown plan type in payment event: %q", event.PlanType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payment := models.PaymentInfo{
		TransactionID: event.TransactionID,
		Provider:      event.Provider,
		Amount:        event.Amount,
		Currency:      event.Currency,
	}
	if err := c.handler.HandlePaymentSucceeded(ctx, event.UserID, plan, payment); err != nil {
		return fmt.Errorf("failed to apply payment for user %s: %w", event.UserID, err)
	}

	log.Printf("Applied plan %s for user %s", plan, event.UserID)
	return nil
}

func (c *PaymentConsumer) Close() error {
	if !c.enabled {
		return nil
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
