package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/mocks"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/pkg/config"
)

func newApp(svc ports.ConversationService) *fiber.App {
	log := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	NewConversationHandler(svc, log).RegisterRoutes(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestConversationHandler_Start(t *testing.T) {
	// Arrange
	var gotChannel domain.Channel
	svc := &mocks.MockConversationService{
		StartFunc: func(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
			gotChannel = channel
			return &ports.Reply{ConversationID: "c1", Text: "Merhaba!", Step: domain.StepIntake}, nil
		},
	}

	// Act
	status, body := doJSON(t, newApp(svc), "POST", "/api/v1/conversations", `{}`)
	badStatus, _ := doJSON(t, newApp(svc), "POST", "/api/v1/conversations", `{"channel":"fax"}`)

	// Assert
	if status != fiber.StatusCreated {
		t.Errorf("expected 201, got %d", status)
	}
	if body["conversation_id"] != "c1" || body["reply"] != "Merhaba!" {
		t.Errorf("unexpected body: %v", body)
	}
	if gotChannel != domain.ChannelAPI {
		t.Errorf("expected api channel by default, got %s", gotChannel)
	}
	if badStatus != fiber.StatusBadRequest {
		t.Errorf("expected 400 for an unknown channel, got %d", badStatus)
	}
}

func TestConversationHandler_SendMessage(t *testing.T) {
	svc := &mocks.MockConversationService{
		HandleMessageFunc: func(ctx context.Context, id, text string) (*ports.Reply, error) {
			switch id {
			case "missing":
				return nil, domain.ErrConversationNotFound
			case "done":
				return &ports.Reply{ConversationID: id, Text: "closed", Done: true}, domain.ErrConversationClosed
			}
			return &ports.Reply{ConversationID: id, Text: "ok:" + text, Step: domain.StepMood}, nil
		},
	}
	app := newApp(svc)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantKey    string
		wantValue  any
	}{
		{"turn", "/api/v1/conversations/c1/messages", `{"text":"pop olsun"}`, fiber.StatusOK, "reply", "ok:pop olsun"},
		{"step", "/api/v1/conversations/c1/messages", `{"text":"pop olsun"}`, fiber.StatusOK, "step", "mood"},
		{"empty text", "/api/v1/conversations/c1/messages", `{"text":""}`, fiber.StatusBadRequest, "", nil},
		{"not found", "/api/v1/conversations/missing/messages", `{"text":"x"}`, fiber.StatusNotFound, "error", domain.ErrConversationNotFound.Error()},
		{"closed", "/api/v1/conversations/done/messages", `{"text":"x"}`, fiber.StatusConflict, "done", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", tt.path, tt.body)

			if status != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, status)
			}
			if tt.wantKey != "" && body[tt.wantKey] != tt.wantValue {
				t.Errorf("expected %s=%v, got %v", tt.wantKey, tt.wantValue, body[tt.wantKey])
			}
		})
	}
}

func TestConversationHandler_Get(t *testing.T) {
	svc := &mocks.MockConversationService{
		GetFunc: func(ctx context.Context, id string) (*domain.Conversation, error) {
			return &domain.Conversation{ID: id, Step: domain.StepVocal, State: domain.NewPartialOrderState().With(domain.SlotSongType, "Rock")}, nil
		},
	}

	status, body := doJSON(t, newApp(svc), "GET", "/api/v1/conversations/c9", "")

	if status != fiber.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if body["step"] != "vocal" {
		t.Errorf("expected step vocal, got %v", body["step"])
	}
}

func TestGatewayAuth(t *testing.T) {
	// Arrange
	cfg := config.JWTConfig{Secret: "s3cret", Issuer: "gateway"}
	var subject string
	svc := &mocks.MockConversationService{
		StartFunc: func(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
			subject = userRef
			return &ports.Reply{ConversationID: "c1"}, nil
		},
	}

	log := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	NewConversationHandler(svc, log).RegisterRoutes(app.Group("/api/v1", middleware.GatewayAuth(cfg, log)))

	sign := func(iss string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    iss,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		s, err := token.SignedString([]byte(cfg.Secret))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return s
	}

	call := func(auth string) int {
		req := httptest.NewRequest("POST", "/api/v1/conversations", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp.StatusCode
	}

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token abc", fiber.StatusUnauthorized},
		{"wrong issuer", "Bearer " + sign("someone-else"), fiber.StatusUnauthorized},
		{"valid token", "Bearer " + sign("gateway"), fiber.StatusCreated},
	}

	// Act / Assert
	for _, tt := range tests {
		if got := call(tt.auth); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
	if subject != "user-42" {
		t.Errorf("expected token subject as user ref, got %q", subject)
	}
}
