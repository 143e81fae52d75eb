package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/songorder/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a string key-value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ConversationStore persists in-flight conversations between turns.
// Load returns domain.ErrConversationNotFound for unknown ids.
type ConversationStore interface {
	Load(ctx context.Context, id string) (*domain.Conversation, error)
	Save(ctx context.Context, conv *domain.Conversation) error
	Delete(ctx context.Context, id string) error
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByConversationID(ctx context.Context, conversationID string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}
