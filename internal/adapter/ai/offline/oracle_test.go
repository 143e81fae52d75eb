package offline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/service/slotfill"
)

func extract(t *testing.T, c slotfill.Contract, turn string) map[string]*string {
	t.Helper()
	prompt, err := c.Render(domain.NewPartialOrderState(), turn)
	require.NoError(t, err)

	raw, err := NewOracle().Extract(context.Background(), prompt, c.Temperature)
	require.NoError(t, err)

	var out map[string]*string
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestOracle_GenreContract(t *testing.T) {
	out := extract(t, slotfill.ContractGenre, "pop olsun lütfen")
	require.NotNil(t, out["song_type"])
	assert.Equal(t, "Pop", *out["song_type"])
	assert.Nil(t, out["artist_style_description"])
	assert.NotNil(t, out["response"])
}

func TestOracle_VocalContract(t *testing.T) {
	out := extract(t, slotfill.ContractVocal, "kadın sesi olsun")
	require.NotNil(t, out["vocal"])
	assert.Equal(t, string(domain.VocalFemale), *out["vocal"])
}

func TestOracle_RecipientContract(t *testing.T) {
	out := extract(t, slotfill.ContractRecipient, "annem için")
	require.NotNil(t, out["recipient_relation"])
	assert.Equal(t, "annem için", *out["recipient_relation"])
}

func TestOracle_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOracle().Extract(ctx, "x", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
