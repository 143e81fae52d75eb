package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
)

const defaultSubject = "songorder.funnel"

// FunnelPublisher sends funnel events as JSON to subject.<type>.
type FunnelPublisher struct {
	mq      MessageQueue
	subject string
	log     *zap.Logger
}

func NewFunnelPublisher(mq MessageQueue, subject string, log *zap.Logger) *FunnelPublisher {
	if subject == "" {
		subject = defaultSubject
	}
	return &FunnelPublisher{mq: mq, subject: subject, log: log}
}

func (p *FunnelPublisher) Publish(ctx context.Context, event domain.FunnelEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		telemetry.FunnelEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to encode funnel event: %w", err)
	}

	subject := p.subject + "." + string(event.Type)
	if err := p.mq.Publish(ctx, subject, data); err != nil {
		telemetry.FunnelEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	telemetry.FunnelEventsTotal.WithLabelValues(string(event.Type), "published").Inc()
	p.log.Debug("Funnel event published",
		zap.String("subject", subject),
		zap.String("conversation_id", event.ConversationID),
	)
	return nil
}

func (p *FunnelPublisher) Close() error {
	return p.mq.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event domain.FunnelEvent) error {
	telemetry.FunnelEventsTotal.WithLabelValues(string(event.Type), "dropped").Inc()
	return nil
}

func (NoopPublisher) Close() error { return nil }
