package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/songorder/internal/domain"
)

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mu          sync.Mutex
	Events      []domain.FunnelEvent
	PublishFunc func(ctx context.Context, event domain.FunnelEvent) error
	CloseFunc   func() error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.FunnelEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventPublisher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Types returns the published event types in order.
func (m *MockEventPublisher) Types() []domain.FunnelEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]domain.FunnelEventType, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}
