package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

// ChatStreamHandler runs a conversation over a websocket: every text frame
// is a turn, every reply a JSON frame.
type ChatStreamHandler struct {
	service ports.ConversationService
	hub     *Hub
	logger  *zap.Logger
}

func NewChatStreamHandler(service ports.ConversationService, hub *Hub, logger *zap.Logger) *ChatStreamHandler {
	return &ChatStreamHandler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

type errorFrame struct {
	Error string `json:"error"`
}

// HandleChat serves one socket. Without ?conversation_id= a new conversation
// is started and its greeting is the first frame.
func (h *ChatStreamHandler) HandleChat(c *websocket.Conn) {
	ctx := context.Background()
	conversationID := c.Query("conversation_id")
	userRef, _ := c.Locals(middleware.SubjectKey).(string)

	var greeting *ports.Reply
	if conversationID == "" {
		reply, err := h.service.Start(ctx, domain.ChannelWebSocket, userRef)
		if err != nil {
			h.logger.Error("Failed to start websocket conversation", zap.Error(err))
			h.writeError(c, "could not start conversation")
			return
		}
		conversationID = reply.ConversationID
		greeting = reply
	} else if _, err := h.service.Get(ctx, conversationID); err != nil {
		h.writeError(c, err.Error())
		return
	}

	client := h.hub.Attach(c, conversationID)
	if client == nil {
		return
	}
	defer h.hub.Detach(client)

	if greeting != nil {
		h.deliver(conversationID, greeting)
	}

	for {
		messageType, msg, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("Websocket closed", zap.String("conversation_id", conversationID), zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply, err := h.service.HandleMessage(ctx, conversationID, string(msg))
		if err != nil && !errors.Is(err, domain.ErrConversationClosed) {
			h.logger.Error("Websocket turn failed", zap.String("conversation_id", conversationID), zap.Error(err))
			data, _ := json.Marshal(errorFrame{Error: "turn failed"})
			h.hub.Deliver(conversationID, data)
			continue
		}
		h.deliver(conversationID, reply)
	}
}

func (h *ChatStreamHandler) deliver(conversationID string, reply *ports.Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	h.hub.Deliver(conversationID, data)
}

// writeError is only used before the socket joins the hub.
func (h *ChatStreamHandler) writeError(c *websocket.Conn, msg string) {
	data, _ := json.Marshal(errorFrame{Error: msg})
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Debug("Failed to write websocket error", zap.Error(err))
	}
}

// RegisterRoutes mounts GET /ws/chat behind the upgrade check.
func (h *ChatStreamHandler) RegisterRoutes(app fiber.Router, guards ...fiber.Handler) {
	handlers := append([]fiber.Handler{func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}}, guards...)
	handlers = append(handlers, websocket.New(h.HandleChat))
	app.Get("/ws/chat", handlers...)
}
