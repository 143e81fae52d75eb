package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

func TestOracle_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"song_style\":\"Romantik\"}"}]}}],
			"usageMetadata":{"promptTokenCount":7,"candidatesTokenCount":4}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	o, err := NewOracle(ctx, config.OracleConfig{APIKey: "key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	out, err := o.Extract(ctx, "prompt", 0.1)
	require.NoError(t, err)
	assert.Equal(t, `{"song_style":"Romantik"}`, out)
}

func TestNewOracle_RequiresKey(t *testing.T) {
	_, err := NewOracle(context.Background(), config.OracleConfig{}, zap.NewNop())
	assert.Error(t, err)
}
