package ports

import (
	"context"

	"github.com/seu-repo/songorder/internal/domain"
)

// Oracle is the language model seam: a prompt in, raw text out. Temperature is
// in [0,1]. Implementations must honor ctx cancellation.
type Oracle interface {
	Extract(ctx context.Context, prompt string, temperature float64) (string, error)
}

// EventPublisher ships funnel events to the analytics backend.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.FunnelEvent) error
	Close() error
}

// Messenger delivers a reply to a user on an out-of-band channel.
type Messenger interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Reply is what a conversation turn produces for the channel.
type Reply struct {
	ConversationID string                   `json:"conversation_id"`
	Text           string                   `json:"reply"`
	Step           domain.Step              `json:"step"`
	State          domain.PartialOrderState `json:"state"`
	Done           bool                     `json:"done"`
}

type ConversationService interface {
	Start(ctx context.Context, channel domain.Channel, userRef string) (*Reply, error)
	HandleMessage(ctx context.Context, conversationID, text string) (*Reply, error)
	// HandleChannelMessage keys the conversation by channel and sender,
	// starting one when none is open.
	HandleChannelMessage(ctx context.Context, channel domain.Channel, userRef, text string) (*Reply, error)
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
}
