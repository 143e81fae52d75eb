//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/pkg/config"
)

// databaseURL returns DATABASE_URL when set (CI) or starts a container.
func databaseURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("songorder_test"),
		tcpostgres.WithUsername("songorder"),
		tcpostgres.WithPassword("songorder_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func TestOrderRepository_Integration(t *testing.T) {
	log := zap.NewNop()
	db, err := NewConnection(config.DatabaseConfig{URL: databaseURL(t)}, log)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, RunMigrations(db))

	ctx := context.Background()
	require.NoError(t, Ping(ctx, db))
	repo := NewOrderRepository(db, log)

	now := time.Now().UTC().Truncate(time.Second)
	conv := &domain.Conversation{
		ID:      "conv-it-1",
		Channel: domain.ChannelAPI,
		UserRef: "user-1",
		State: domain.NewPartialOrderState().
			With(domain.SlotSongType, "Pop").
			With(domain.SlotSongStyle, "Romantik").
			With(domain.SlotVocal, string(domain.VocalMale)).
			With(domain.SlotRecipientRelation, "Eşim").
			With(domain.SlotRecipientName, "Ayşe").
			WithBool(domain.SlotIncludeName, true).
			With(domain.SlotStory, "İlk kez bir yaz akşamı sahilde tanıştık.").
			With(domain.SlotNotes, ""),
	}
	order := domain.NewOrder("order-it-1", conv, now)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, "order-it-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ayşe", found.RecipientName)
	assert.True(t, found.IncludeName)
	assert.Equal(t, domain.VocalMale, found.Vocal)

	byConv, err := repo.FindByConversationID(ctx, "conv-it-1")
	require.NoError(t, err)
	require.NotNil(t, byConv)
	assert.Equal(t, "order-it-1", byConv.ID)

	found.Status = domain.OrderStatusRevisionRequested
	found.RevisionRequest = "Nakarat daha neşeli olsun"
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindByID(ctx, "order-it-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRevisionRequested, updated.Status)
	assert.Equal(t, "Nakarat daha neşeli olsun", updated.RevisionRequest)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
