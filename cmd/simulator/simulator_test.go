package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	wsAdapter "github.com/seu-repo/songorder/internal/adapter/websocket"
	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/mocks"
	"github.com/seu-repo/songorder/internal/ports"
)

func echoService() *mocks.MockConversationService {
	return &mocks.MockConversationService{
		StartFunc: func(ctx context.Context, channel domain.Channel, userRef string) (*ports.Reply, error) {
			return &ports.Reply{ConversationID: "c1", Text: "Merhaba!", Step: domain.StepIntake}, nil
		},
		GetFunc: func(ctx context.Context, id string) (*domain.Conversation, error) {
			return &domain.Conversation{ID: id}, nil
		},
		HandleMessageFunc: func(ctx context.Context, id, text string) (*ports.Reply, error) {
			state := domain.NewPartialOrderState().With(domain.SlotSongType, "pop")
			return &ports.Reply{ConversationID: id, Text: "ok:" + text, Step: domain.StepMood, State: state}, nil
		},
	}
}

func TestSimulator_Local(t *testing.T) {
	svc := echoService()
	var channel domain.Channel
	start := svc.StartFunc
	svc.StartFunc = func(ctx context.Context, c domain.Channel, userRef string) (*ports.Reply, error) {
		channel = c
		return start(ctx, c, userRef)
	}

	var out bytes.Buffer
	sim := NewSimulator(newLocalBackend(svc), &out, zap.NewNop())
	err := sim.Run(context.Background(), strings.NewReader("pop olsun\n/state\n/quit\nunreached\n"))
	require.NoError(t, err)

	assert.Equal(t, domain.ChannelCLI, channel)
	text := out.String()
	assert.Contains(t, text, "Bot: Merhaba!")
	assert.Contains(t, text, "Bot: ok:pop olsun")
	assert.Contains(t, text, "Adım: mood")
	assert.Contains(t, text, `"pop"`)
	assert.NotContains(t, text, "unreached")
}

func TestSimulator_ClosedConversation(t *testing.T) {
	svc := echoService()
	svc.HandleMessageFunc = func(ctx context.Context, id, text string) (*ports.Reply, error) {
		return &ports.Reply{ConversationID: id, Text: "bitti", Step: domain.StepDone, Done: true}, domain.ErrConversationClosed
	}

	var out bytes.Buffer
	sim := NewSimulator(newLocalBackend(svc), &out, zap.NewNop())
	require.NoError(t, sim.Run(context.Background(), strings.NewReader("merhaba\n")))

	assert.Contains(t, out.String(), "Bot: bitti")
	assert.Contains(t, out.String(), "/restart")
}

func TestSimulator_Remote(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := wsAdapter.NewHub()
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	wsAdapter.NewChatStreamHandler(echoService(), hub, zap.NewNop()).RegisterRoutes(app)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		_ = app.Shutdown()
		cancel()
	})

	backend := newRemoteBackend("ws://"+ln.Addr().String()+"/ws/chat", "", zap.NewNop())
	defer backend.Close()

	greeting, err := backend.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", greeting.ConversationID)
	assert.Equal(t, "Merhaba!", greeting.Text)

	reply, err := backend.Send(context.Background(), "pop")
	require.NoError(t, err)
	assert.Equal(t, "ok:pop", reply.Text)
	assert.Equal(t, "pop", reply.State.Value(domain.SlotSongType))
}

func TestRemoteBackend_SendBeforeStart(t *testing.T) {
	backend := newRemoteBackend("ws://127.0.0.1:1/ws/chat", "", zap.NewNop())
	_, err := backend.Send(context.Background(), "x")
	assert.Error(t, err)
	assert.NoError(t, backend.Close())
}
