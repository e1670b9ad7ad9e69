package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const defaultPublishTimeout = 5 * time.Second

// publisher is the subset of *amqp091.Channel used for publishing.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes events to a durable topic exchange, routed by event type.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	pub      publisher
	exchange string
	timeout  time.Duration

	mu sync.Mutex
}

// NewAMQPNotifier dials url and declares exchange.
func NewAMQPNotifier(url, exchange string, timeout time.Duration) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	n := newAMQPNotifier(channel, exchange, timeout)
	n.conn = conn
	n.channel = channel
	return n, nil
}

// Dial returns an AMQPNotifier for url, or a LogNotifier when the broker is
// unreachable. The returned close func is always safe to call.
func Dial(url, exchange string, timeout time.Duration, logger *slog.Logger) (Notifier, func() error) {
	if logger == nil {
		logger = slog.Default()
	}
	fallback := NewLogNotifier(logger)
	if url == "" {
		return fallback, func() error { return nil }
	}

	n, err := NewAMQPNotifier(url, exchange, timeout)
	if err != nil {
		logger.Warn("Notification broker unavailable, logging events instead", "error", err)
		return fallback, func() error { return nil }
	}
	logger.Info("Publishing notifications", "exchange", exchange)
	return n, n.Close
}

func newAMQPNotifier(pub publisher, exchange string, timeout time.Duration) *AMQPNotifier {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &AMQPNotifier{pub: pub, exchange: exchange, timeout: timeout}
}

// Notify publishes event as a persistent JSON message.
func (n *AMQPNotifier) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.pub.PublishWithContext(
		ctx,
		n.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	slog.DebugContext(ctx, "Published event",
		"type", event.Type,
		"subject", event.SubjectID,
		"exchange", n.exchange)
	return nil
}

// Close closes the channel and connection.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
