package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

func newTestMessenger(t *testing.T, handler http.HandlerFunc) *TwilioMessenger {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m, err := NewTwilioMessenger(config.WhatsAppConfig{
		AccountSID:  "AC123",
		AuthToken:   "token",
		PhoneNumber: "+14155238886",
	}, zap.NewNop())
	require.NoError(t, err)
	m.baseURL = srv.URL
	return m
}

func TestSendMessage(t *testing.T) {
	var forms []url.Values
	m := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)
		require.NoError(t, r.ParseForm())
		forms = append(forms, r.PostForm)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	})

	require.NoError(t, m.SendMessage(context.Background(), "+905551112233", "Merhaba!"))
	require.Len(t, forms, 1)
	assert.Equal(t, "whatsapp:+905551112233", forms[0].Get("To"))
	assert.Equal(t, "whatsapp:+14155238886", forms[0].Get("From"))
	assert.Equal(t, "Merhaba!", forms[0].Get("Body"))
}

func TestSendMessage_TwilioError(t *testing.T) {
	m := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	})

	err := m.SendMessage(context.Background(), "whatsapp:+1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}

func TestSendMessage_GatewayErrorKeepsStatus(t *testing.T) {
	m := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	})

	err := m.SendMessage(context.Background(), "+905551112233", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSplit(t *testing.T) {
	para := strings.Repeat("ş", 700)
	body := para + "\n\n" + para + "\n\n" + para

	parts := Split(body, MaxBodyRunes)
	require.Len(t, parts, 2)
	assert.Equal(t, para+"\n\n"+para, parts[0])
	assert.Equal(t, para, parts[1])
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), MaxBodyRunes)
	}

	assert.Equal(t, []string{"kısa"}, Split("  kısa ", MaxBodyRunes))
	assert.Empty(t, Split("   ", MaxBodyRunes))
}

func TestSplit_NoBoundary(t *testing.T) {
	parts := Split(strings.Repeat("a", 25), 10)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, parts)
}

func TestValidSignature(t *testing.T) {
	// example from Twilio's webhook security documentation
	form := url.Values{
		"CallSid": {"CA1234567890ABCDE"},
		"Caller":  {"+12349013030"},
		"Digits":  {"1234"},
		"From":    {"+12349013030"},
		"To":      {"+18005551212"},
	}
	const fullURL = "https://mycompany.com/myapp.php?foo=1&bar=2"
	const authToken = "12345"

	assert.True(t, ValidSignature(authToken, fullURL, form, "0/KCTR6DLpKmkAf8muzZqo1nDgQ="))
	assert.False(t, ValidSignature(authToken, fullURL, form, "bogus"))
	assert.False(t, ValidSignature("other", fullURL, form, "0/KCTR6DLpKmkAf8muzZqo1nDgQ="))
}

func TestSender(t *testing.T) {
	assert.Equal(t, "+905551112233", Sender("whatsapp:+905551112233"))
}
