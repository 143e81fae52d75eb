//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/pkg/config"
)

// redisURL returns REDIS_URL when set (CI) or starts a container.
func redisURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

func TestRedisCache_Integration(t *testing.T) {
	c, err := NewRedisCache(config.RedisConfig{URL: redisURL(t)}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	t.Run("SetGet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "test:key", "test-value", time.Minute))
		val, err := c.Get(ctx, "test:key")
		require.NoError(t, err)
		assert.Equal(t, "test-value", val)
	})

	t.Run("Miss", func(t *testing.T) {
		_, err := c.Get(ctx, "test:missing")
		assert.ErrorIs(t, err, ports.ErrCacheMiss)
	})

	t.Run("Expiration", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "test:expiring", "value", 100*time.Millisecond))
		time.Sleep(250 * time.Millisecond)
		_, err := c.Get(ctx, "test:expiring")
		assert.ErrorIs(t, err, ports.ErrCacheMiss)
	})

	t.Run("ConversationStore", func(t *testing.T) {
		store := NewConversationStore(c, time.Minute)
		conv := &domain.Conversation{
			ID:      "whatsapp:+905551112233",
			Channel: domain.ChannelWhatsApp,
			Step:    domain.StepStory,
			State:   domain.NewPartialOrderState().With(domain.SlotVocal, string(domain.VocalFemale)),
		}
		require.NoError(t, store.Save(ctx, conv))

		loaded, err := store.Load(ctx, conv.ID)
		require.NoError(t, err)
		vocal, ok := loaded.State.Vocal()
		assert.True(t, ok)
		assert.Equal(t, domain.VocalFemale, vocal)
	})
}
