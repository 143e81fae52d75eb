package domain

import "time"

type Step string

const (
	StepIntake       Step = "intake"
	StepGenre        Step = "genre"
	StepMood         Step = "mood"
	StepVocal        Step = "vocal"
	StepRecipient    Step = "recipient"
	StepIncludeName  Step = "include_name"
	StepStory        Step = "story"
	StepNotes        Step = "notes"
	StepConfirmation Step = "confirmation"
	StepLyricsReview Step = "lyrics_review"
	StepDone         Step = "done"
)

type Channel string

const (
	ChannelAPI       Channel = "api"
	ChannelWebSocket Channel = "websocket"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelCLI       Channel = "cli"
)

type Conversation struct {
	ID        string            `json:"id"`
	Channel   Channel           `json:"channel"`
	UserRef   string            `json:"user_ref"`
	Step      Step              `json:"step"`
	State     PartialOrderState `json:"state"`
	Turns     int               `json:"turns"`
	OrderID   string            `json:"order_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (c *Conversation) Done() bool {
	return c.Step == StepDone
}
