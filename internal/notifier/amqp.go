package notifier

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/events"
)

// AMQPNotifier publishes ticket updates to a durable RabbitMQ queue.
// Messages are persistent JSON so they survive broker restarts.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewAMQPNotifier dials the broker and declares the queue (idempotent).
func NewAMQPNotifier(url, queue string, logger *zap.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq", zap.String("queue", queue))
	return &AMQPNotifier{conn: conn, channel: channel, queue: queue, logger: logger}, nil
}

// Publish sends the event to the queue via the default exchange.
func (n *AMQPNotifier) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = n.channel.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    event.ID,
			Body:         body,
		},
	)
	if err != nil {
		n.logger.Warn("rabbitmq publish failed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return err
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
