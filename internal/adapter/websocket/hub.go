package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// Hub fans replies out to every socket attached to a conversation, so two
// tabs on the same chat see the same turns.
type Hub struct {
	// Clients per conversation.
	clients map[string]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

type delivery struct {
	conversationID string
	message        []byte
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send           chan []byte
	conversationID string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		deliver:    make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = map[string]map[*Client]bool{}
			return
		case client := <-h.register:
			set, ok := h.clients[client.conversationID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.conversationID] = set
			}
			set[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case d := <-h.deliver:
			for client := range h.clients[d.conversationID] {
				select {
				case client.send <- d.message:
				default:
					// slow reader
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	set := h.clients[client.conversationID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.conversationID)
	}
}

// Attach registers conn for conversationID and starts its writer. It returns
// nil when the hub has stopped.
func (h *Hub) Attach(conn *websocket.Conn, conversationID string) *Client {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 16), conversationID: conversationID}
	select {
	case h.register <- client:
	case <-h.done:
		return nil
	}
	go client.writePump()
	return client
}

// Detach unregisters the client; safe after the hub stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Deliver queues message for every socket of conversationID.
func (h *Hub) Deliver(conversationID string, message []byte) {
	select {
	case h.deliver <- delivery{conversationID: conversationID, message: message}:
	case <-h.done:
	}
}

func (c *Client) writePump() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	// drain so the hub never blocks on a dead writer
	for range c.send {
	}
}
