package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/songorder/internal/domain"
)

func TestOrderRepository(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := &domain.Order{ID: "o1", ConversationID: "c1", Status: domain.OrderStatusConfirmed, CreatedAt: now}
	second := &domain.Order{ID: "o2", ConversationID: "c1", Status: domain.OrderStatusConfirmed, CreatedAt: now.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.FindByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "o2", got.ID)

	// stored copies are isolated from the caller's pointer
	first.Status = domain.OrderStatusLyricsApproved
	got, err = repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)

	require.NoError(t, repo.Update(ctx, first))
	got, _ = repo.FindByID(ctx, "o1")
	assert.Equal(t, domain.OrderStatusLyricsApproved, got.Status)

	missing, err := repo.FindByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
