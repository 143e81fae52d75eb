package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

// MockOracle is a mock implementation of ports.Oracle. Without ExtractFunc
// it replays Responses in order.
type MockOracle struct {
	mu          sync.Mutex
	Responses   []string
	Prompts     []string
	ExtractFunc func(ctx context.Context, prompt string, temperature float64) (string, error)
}

func NewMockOracle(responses ...string) *MockOracle {
	return &MockOracle{Responses: responses}
}

func (m *MockOracle) Extract(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, prompt, temperature)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return "", errors.New("mock oracle: no scripted response")
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

// Calls returns how many prompts the oracle received.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockMessenger is a mock implementation of ports.Messenger
type MockMessenger struct {
	mu              sync.Mutex
	Sent            []SentMessage
	SendMessageFunc func(ctx context.Context, to, body string) error
}

type SentMessage struct {
	To   string
	Body string
}

func (m *MockMessenger) SendMessage(ctx context.Context, to, body string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, to, body)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{To: to, Body: body})
	return nil
}

// Messages returns a copy of what was sent so far.
func (m *MockMessenger) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.Sent...)
}

// MockConversationService is a mock implementation of ports.ConversationService
type MockConversationService struct {
	StartFunc                func(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error)
	HandleMessageFunc        func(ctx context.Context, conversationID, text string) (*ports.Reply, error)
	HandleChannelMessageFunc func(ctx context.Context, channel domain.Channel, userRef, text string) (*ports.Reply, error)
	GetFunc                  func(ctx context.Context, conversationID string) (*domain.Conversation, error)
}

func (m *MockConversationService) Start(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, channel, userRef)
	}
	return &ports.Reply{ConversationID: "conv-1", Step: domain.StepIntake}, nil
}

func (m *MockConversationService) HandleMessage(ctx context.Context, conversationID, text string) (*ports.Reply, error) {
	if m.HandleMessageFunc != nil {
		return m.HandleMessageFunc(ctx, conversationID, text)
	}
	return &ports.Reply{ConversationID: conversationID, Text: text}, nil
}

func (m *MockConversationService) HandleChannelMessage(ctx context.Context, channel domain.Channel, userRef, text string) (*ports.Reply, error) {
	if m.HandleChannelMessageFunc != nil {
		return m.HandleChannelMessageFunc(ctx, channel, userRef, text)
	}
	return &ports.Reply{ConversationID: string(channel) + ":" + userRef, Text: text}, nil
}

func (m *MockConversationService) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, conversationID)
	}
	return nil, domain.ErrConversationNotFound
}
