package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

const defaultExchange = "songorder.funnel"

// RabbitMQQueue publishes to a durable topic exchange; the subject is the
// routing key.
type RabbitMQQueue struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	url      string
	exchange string
	mu       sync.RWMutex
	log      *zap.Logger
	stopCh   chan struct{}
	once     sync.Once
}

// NewRabbitMQQueue creates a new RabbitMQ message queue adapter
func NewRabbitMQQueue(cfg config.RabbitMQConfig, log *zap.Logger) (*RabbitMQQueue, error) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}

	q := &RabbitMQQueue{
		url:      cfg.URL,
		exchange: exchange,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	conn, ch, err := q.dial()
	if err != nil {
		return nil, err
	}
	q.conn, q.channel = conn, ch

	go q.monitorConnection(conn)

	log.Info("Successfully connected to RabbitMQ", zap.String("exchange", exchange))
	return q, nil
}

func (q *RabbitMQQueue) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(q.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}
	return conn, ch, nil
}

func (q *RabbitMQQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	err := q.channel.PublishWithContext(ctx,
		q.exchange, subject, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         data,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

func (q *RabbitMQQueue) Close() error {
	q.once.Do(func() { close(q.stopCh) })

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.channel != nil {
		q.channel.Close()
		q.channel = nil
	}
	if q.conn != nil {
		err := q.conn.Close()
		q.conn = nil
		return err
	}
	return nil
}

func (q *RabbitMQQueue) monitorConnection(conn *amqp.Connection) {
	for {
		select {
		case reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1)):
			if !ok || reason == nil {
				return
			}
			q.log.Warn("RabbitMQ connection lost, reconnecting...", zap.String("reason", reason.Reason))
		case <-q.stopCh:
			return
		}

		q.mu.Lock()
		q.channel = nil
		q.mu.Unlock()

		for {
			select {
			case <-q.stopCh:
				return
			case <-time.After(5 * time.Second):
			}

			next, ch, err := q.dial()
			if err != nil {
				q.log.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
				continue
			}

			q.mu.Lock()
			q.conn = next
			q.channel = ch
			q.mu.Unlock()

			q.log.Info("Successfully reconnected to RabbitMQ")
			conn = next
			break
		}
	}
}
