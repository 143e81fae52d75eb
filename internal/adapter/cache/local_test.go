package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocalCache_Expiration(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	c.cleanup()
	c.mu.RLock()
	assert.Empty(t, c.data)
	c.mu.RUnlock()
}

func TestLocalCache_CloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewLocalCache(10*time.Millisecond, zap.NewNop())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestConversationStore_RoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	store := NewConversationStore(c, time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	conv := &domain.Conversation{
		ID:      "conv-1",
		Channel: domain.ChannelAPI,
		Step:    domain.StepVocal,
		State: domain.NewPartialOrderState().
			With(domain.SlotSongType, "Pop").
			With(domain.SlotNotes, ""),
	}
	require.NoError(t, store.Save(ctx, conv))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepVocal, loaded.Step)
	assert.True(t, conv.State.Equal(loaded.State))
	assert.True(t, loaded.State.Has(domain.SlotNotes))

	require.NoError(t, store.Delete(ctx, "conv-1"))
	_, err = store.Load(ctx, "conv-1")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}
