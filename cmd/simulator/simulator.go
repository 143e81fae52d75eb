package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

// Backend is one side of a simulated chat: either the conversation service
// in-process or a running server reached over /ws/chat.
type Backend interface {
	Start(ctx context.Context) (*ports.Reply, error)
	Send(ctx context.Context, text string) (*ports.Reply, error)
	Close() error
}

// localBackend drives a conversation service directly.
type localBackend struct {
	service        ports.ConversationService
	conversationID string
}

func newLocalBackend(service ports.ConversationService) *localBackend {
	return &localBackend{service: service}
}

func (b *localBackend) Start(ctx context.Context) (*ports.Reply, error) {
	reply, err := b.service.Start(ctx, domain.ChannelCLI, "simulator")
	if err != nil {
		return nil, err
	}
	b.conversationID = reply.ConversationID
	return reply, nil
}

func (b *localBackend) Send(ctx context.Context, text string) (*ports.Reply, error) {
	if b.conversationID == "" {
		return nil, errors.New("conversation not started")
	}
	reply, err := b.service.HandleMessage(ctx, b.conversationID, text)
	if errors.Is(err, domain.ErrConversationClosed) {
		return reply, nil
	}
	return reply, err
}

func (b *localBackend) Close() error { return nil }

// remoteBackend speaks the /ws/chat protocol: every text frame is one user
// turn and the server answers with one JSON frame.
type remoteBackend struct {
	url   string
	token string
	conn  *websocket.Conn
	mu    sync.Mutex
	log   *zap.Logger
}

// remoteFrame is either a reply or an error frame.
type remoteFrame struct {
	ports.Reply
	Error string `json:"error"`
}

func newRemoteBackend(url, token string, log *zap.Logger) *remoteBackend {
	return &remoteBackend{url: url, token: token, log: log}
}

func (b *remoteBackend) Start(ctx context.Context) (*ports.Reply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}

	header := http.Header{}
	if b.token != "" {
		header.Set("Authorization", "Bearer "+b.token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, b.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s (HTTP %d): %w", b.url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", b.url, err)
	}
	b.conn = conn
	b.log.Debug("Connected to server", zap.String("url", b.url))

	return b.read(ctx)
}

func (b *remoteBackend) Send(ctx context.Context, text string) (*ports.Reply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil, errors.New("not connected")
	}
	if err := b.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return b.read(ctx)
}

func (b *remoteBackend) read(ctx context.Context) (*ports.Reply, error) {
	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var frame remoteFrame
	if err := b.conn.ReadJSON(&frame); err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	if frame.Error != "" {
		return nil, fmt.Errorf("server error: %s", frame.Error)
	}
	return &frame.Reply, nil
}

func (b *remoteBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}
	_ = b.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := b.conn.Close()
	b.conn = nil
	return err
}

// Simulator is an interactive chat REPL over a Backend.
type Simulator struct {
	backend Backend
	out     io.Writer
	log     *zap.Logger
	last    *ports.Reply
}

func NewSimulator(backend Backend, out io.Writer, log *zap.Logger) *Simulator {
	return &Simulator{backend: backend, out: out, log: log}
}

func (s *Simulator) printHelp() {
	fmt.Fprintln(s.out, "Şarkı Siparişi Simülatörü")
	fmt.Fprintln(s.out, "=========================")
	fmt.Fprintln(s.out, "Mesajınızı yazıp Enter'a basın. Komutlar:")
	fmt.Fprintln(s.out, "  /state    - Toplanan bilgileri göster")
	fmt.Fprintln(s.out, "  /restart  - Yeni bir konuşma başlat")
	fmt.Fprintln(s.out, "  /quit     - Çıkış")
	fmt.Fprintln(s.out, "")
}

func (s *Simulator) start(ctx context.Context) error {
	reply, err := s.backend.Start(ctx)
	if err != nil {
		return err
	}
	s.show(reply)
	return nil
}

func (s *Simulator) show(reply *ports.Reply) {
	s.last = reply
	fmt.Fprintf(s.out, "Bot: %s\n", reply.Text)
	if reply.Done {
		fmt.Fprintln(s.out, "(konuşma tamamlandı, /restart ile yeniden başlayabilirsiniz)")
	}
}

func (s *Simulator) showState() {
	if s.last == nil {
		fmt.Fprintln(s.out, "(henüz konuşma yok)")
		return
	}
	fmt.Fprintf(s.out, "Adım: %s\n", s.last.Step)
	filled := s.last.State.Filled()
	if len(filled) == 0 {
		fmt.Fprintln(s.out, "(boş)")
		return
	}
	for _, name := range filled {
		fmt.Fprintf(s.out, "  %-20s %q\n", name, s.last.State.Value(name))
	}
}

// Run reads user turns from in until EOF, /quit or ctx is done.
func (s *Simulator) Run(ctx context.Context, in io.Reader) error {
	s.printHelp()
	if err := s.start(ctx); err != nil {
		return fmt.Errorf("failed to start conversation: %w", err)
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
		case "/quit", "/exit":
			return nil
		case "/state":
			s.showState()
		case "/restart":
			if err := s.start(ctx); err != nil {
				fmt.Fprintf(s.out, "Hata: %v\n", err)
			}
		default:
			reply, err := s.backend.Send(ctx, line)
			if err != nil {
				s.log.Debug("Turn failed", zap.Error(err))
				fmt.Fprintf(s.out, "Hata: %v\n", err)
				break
			}
			s.show(reply)
		}
		fmt.Fprint(s.out, "> ")
	}
	return scanner.Err()
}
