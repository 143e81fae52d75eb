package websocket

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/mocks"
	"github.com/seu-repo/songorder/internal/ports"
)

func startServer(t *testing.T, svc ports.ConversationService) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	NewChatStreamHandler(svc, hub, zap.NewNop()).RegisterRoutes(app)
	go func() { _ = app.Listener(ln) }()

	t.Cleanup(func() {
		_ = app.Shutdown()
		cancel()
	})
	return "ws://" + ln.Addr().String() + "/ws/chat"
}

func readReply(t *testing.T, conn *gorilla.Conn) ports.Reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply ports.Reply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestChatStream(t *testing.T) {
	svc := &mocks.MockConversationService{
		StartFunc: func(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
			assert.Equal(t, domain.ChannelWebSocket, channel)
			return &ports.Reply{ConversationID: "c1", Text: "Merhaba!", Step: domain.StepIntake}, nil
		},
		GetFunc: func(ctx context.Context, id string) (*domain.Conversation, error) {
			if id != "c1" {
				return nil, domain.ErrConversationNotFound
			}
			return &domain.Conversation{ID: id}, nil
		},
		HandleMessageFunc: func(ctx context.Context, id, text string) (*ports.Reply, error) {
			return &ports.Reply{ConversationID: id, Text: "ok:" + text, Step: domain.StepMood}, nil
		},
	}
	url := startServer(t, svc)

	first, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()

	greeting := readReply(t, first)
	assert.Equal(t, "c1", greeting.ConversationID)
	assert.Equal(t, "Merhaba!", greeting.Text)

	second, _, err := gorilla.DefaultDialer.Dial(url+"?conversation_id=c1", nil)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.WriteMessage(gorilla.TextMessage, []byte("pop")))
	assert.Equal(t, "ok:pop", readReply(t, first).Text)

	// a turn sent from the second socket reaches both
	require.NoError(t, second.WriteMessage(gorilla.TextMessage, []byte("rock")))
	got := readReply(t, second)
	if got.Text == "ok:pop" {
		// joined before the first turn was delivered
		got = readReply(t, second)
	}
	assert.Equal(t, "ok:rock", got.Text)
	assert.Equal(t, "ok:rock", readReply(t, first).Text)
}

func TestChatStream_UnknownConversation(t *testing.T) {
	url := startServer(t, &mocks.MockConversationService{})

	conn, _, err := gorilla.DefaultDialer.Dial(url+"?conversation_id=nope", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame errorFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, domain.ErrConversationNotFound.Error(), frame.Error)
}
