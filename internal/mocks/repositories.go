package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/songorder/internal/domain"
)

// MockOrderRepository is a mock implementation of ports.OrderRepository
type MockOrderRepository struct {
	mu                       sync.Mutex
	Orders                   map[string]*domain.Order
	SaveFunc                 func(ctx context.Context, order *domain.Order) error
	FindByIDFunc             func(ctx context.Context, id string) (*domain.Order, error)
	FindByConversationIDFunc func(ctx context.Context, conversationID string) (*domain.Order, error)
	UpdateFunc               func(ctx context.Context, order *domain.Order) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Orders[id], nil
}

func (m *MockOrderRepository) FindByConversationID(ctx context.Context, conversationID string) (*domain.Order, error) {
	if m.FindByConversationIDFunc != nil {
		return m.FindByConversationIDFunc(ctx, conversationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		if o.ConversationID == conversationID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders[order.ID] = order
	return nil
}

// MockConversationStore is a mock implementation of ports.ConversationStore
type MockConversationStore struct {
	mu            sync.Mutex
	Conversations map[string]domain.Conversation
	LoadFunc      func(ctx context.Context, id string) (*domain.Conversation, error)
	SaveFunc      func(ctx context.Context, conv *domain.Conversation) error
	DeleteFunc    func(ctx context.Context, id string) error
}

func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{Conversations: make(map[string]domain.Conversation)}
}

func (m *MockConversationStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.Conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return &conv, nil
}

func (m *MockConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, conv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Conversations[conv.ID] = *conv
	return nil
}

func (m *MockConversationStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Conversations, id)
	return nil
}
