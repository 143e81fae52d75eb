package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/pkg/config"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// NewEventPublisher builds the funnel beacon selected by analytics.backend.
// A disabled beacon, or backend "none", yields a NoopPublisher.
func NewEventPublisher(cfg *config.Config, log *zap.Logger) (ports.EventPublisher, error) {
	if !cfg.Analytics.Enabled {
		return NoopPublisher{}, nil
	}

	var (
		mq  MessageQueue
		err error
	)
	switch cfg.Analytics.Backend {
	case "nats":
		mq, err = NewNATSQueue(cfg.NATS, log)
	case "rabbitmq":
		mq, err = NewRabbitMQQueue(cfg.RabbitMQ, log)
	case "", "none":
		return NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown analytics backend %q", cfg.Analytics.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewFunnelPublisher(mq, cfg.Analytics.Subject, log), nil
}
