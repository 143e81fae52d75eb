// Package whatsapp delivers conversation replies through the Twilio WhatsApp
// API and verifies Twilio webhook signatures.
package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

// MaxBodyRunes is the longest body Twilio accepts for a WhatsApp message.
const MaxBodyRunes = 1600

// TwilioMessenger implements ports.Messenger via Twilio
type TwilioMessenger struct {
	accountSID string
	authToken  string
	fromPhone  string
	baseURL    string
	client     *http.Client
	log        *zap.Logger
}

// TwilioMessageResponse represents a created Twilio message
type TwilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TwilioErrorResponse is the body of a 4xx/5xx answer. Status is the HTTP
// status as a number here, unlike the message status string above.
type TwilioErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	MoreInfo string `json:"more_info,omitempty"`
}

func NewTwilioMessenger(cfg config.WhatsAppConfig, log *zap.Logger) (*TwilioMessenger, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("whatsapp: account_sid, auth_token and phone_number are required")
	}

	return &TwilioMessenger{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromPhone:  withPrefix(cfg.PhoneNumber),
		baseURL:    fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s", cfg.AccountSID),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}, nil
}

// SendMessage sends body to a WhatsApp number, split into several messages
// when it exceeds MaxBodyRunes.
func (m *TwilioMessenger) SendMessage(ctx context.Context, to, body string) error {
	to = withPrefix(to)
	for i, part := range Split(body, MaxBodyRunes) {
		sid, err := m.send(ctx, to, part)
		if err != nil {
			m.log.Error("Failed to send WhatsApp message",
				zap.String("to", to),
				zap.Int("part", i),
				zap.Error(err),
			)
			return err
		}
		m.log.Debug("WhatsApp message sent", zap.String("to", to), zap.String("sid", sid))
	}
	return nil
}

func (m *TwilioMessenger) send(ctx context.Context, to, body string) (string, error) {
	data := url.Values{}
	data.Set("From", m.fromPhone)
	data.Set("To", to)
	data.Set("Body", body)

	reqURL := fmt.Sprintf("%s/Messages.json", m.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(m.accountSID, m.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr TwilioErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return "", fmt.Errorf("twilio error: HTTP %d", resp.StatusCode)
		}
		return "", fmt.Errorf("twilio error: %s (code: %d, HTTP %d)", apiErr.Message, apiErr.Code, resp.StatusCode)
	}

	var result TwilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if result.ErrorCode != 0 {
		return "", fmt.Errorf("twilio error: %s (code: %d)", result.ErrorMessage, result.ErrorCode)
	}
	return result.SID, nil
}

// Split breaks body into chunks of at most limit runes, preferring paragraph
// and then line boundaries.
func Split(body string, limit int) []string {
	body = strings.TrimSpace(body)
	var parts []string
	for utf8.RuneCountInString(body) > limit {
		cut := byteOffset(body, limit)
		head := body[:cut]
		if i := strings.LastIndex(head, "\n\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, "\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, " "); i > 0 {
			cut = i
		}
		parts = append(parts, strings.TrimSpace(body[:cut]))
		body = strings.TrimSpace(body[cut:])
	}
	if body != "" {
		parts = append(parts, body)
	}
	return parts
}

func byteOffset(s string, runes int) int {
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}

// ValidSignature checks X-Twilio-Signature: base64(HMAC-SHA1(authToken,
// url + sorted key/value pairs of the POST form)).
func ValidSignature(authToken, fullURL string, form url.Values, signature string) bool {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sender strips the "whatsapp:" prefix Twilio puts on From.
func Sender(from string) string {
	return strings.TrimPrefix(from, "whatsapp:")
}

func withPrefix(phone string) string {
	if !strings.HasPrefix(phone, "whatsapp:") {
		return "whatsapp:" + phone
	}
	return phone
}
