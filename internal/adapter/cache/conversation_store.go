package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

const conversationKeyPrefix = "songorder:conversation:"

// ConversationStore keeps conversations as JSON in a ports.Cache. Every save
// refreshes the TTL, so idle conversations expire.
type ConversationStore struct {
	cache ports.Cache
	ttl   time.Duration
}

func NewConversationStore(cache ports.Cache, ttl time.Duration) *ConversationStore {
	return &ConversationStore{cache: cache, ttl: ttl}
}

func (s *ConversationStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	raw, err := s.cache.Get(ctx, conversationKeyPrefix+id)
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	return s.cache.Set(ctx, conversationKeyPrefix+conv.ID, string(data), s.ttl)
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, conversationKeyPrefix+id)
}
