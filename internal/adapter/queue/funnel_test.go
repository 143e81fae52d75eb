package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/pkg/config"
)

type recordingQueue struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (q *recordingQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if q.err != nil {
		return q.err
	}
	q.subjects = append(q.subjects, subject)
	q.payloads = append(q.payloads, data)
	return nil
}

func (q *recordingQueue) Close() error {
	q.closed = true
	return nil
}

func TestFunnelPublisher_Publish(t *testing.T) {
	mq := &recordingQueue{}
	p := NewFunnelPublisher(mq, "", zap.NewNop())

	event := domain.FunnelEvent{
		Type:           domain.EventSlotFilled,
		ConversationID: "conv-1",
		Channel:        domain.ChannelAPI,
		Step:           domain.StepMood,
		Slot:           domain.SlotSongType,
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, mq.subjects, 1)
	assert.Equal(t, "songorder.funnel.slot_filled", mq.subjects[0])

	var decoded domain.FunnelEvent
	require.NoError(t, json.Unmarshal(mq.payloads[0], &decoded))
	assert.Equal(t, event, decoded)

	require.NoError(t, p.Close())
	assert.True(t, mq.closed)
}

func TestFunnelPublisher_PublishError(t *testing.T) {
	mq := &recordingQueue{err: errors.New("nats: connection closed")}
	p := NewFunnelPublisher(mq, "beacon", zap.NewNop())

	err := p.Publish(context.Background(), domain.FunnelEvent{Type: domain.EventFallback})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beacon.fallback")
}

func TestNewEventPublisher_Disabled(t *testing.T) {
	cfg := &config.Config{}
	p, err := NewEventPublisher(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), domain.FunnelEvent{Type: domain.EventFallback}))
}

func TestNewEventPublisher_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Analytics: config.AnalyticsConfig{Enabled: true, Backend: "kafka"}}
	_, err := NewEventPublisher(cfg, zap.NewNop())
	assert.Error(t, err)
}
