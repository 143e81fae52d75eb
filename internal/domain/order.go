package domain

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed         OrderStatus = "Confirmed"
	OrderStatusRevisionRequested OrderStatus = "RevisionRequested"
	OrderStatusLyricsApproved    OrderStatus = "LyricsApproved"
)

// Order is the confirmed slot set, persisted for fulfillment.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey"`
	ConversationID    string      `json:"conversation_id" gorm:"index"`
	Channel           Channel     `json:"channel"`
	UserRef           string      `json:"user_ref" gorm:"index"`
	SongType          string      `json:"song_type"`
	ArtistStyle       string      `json:"artist_style_description"`
	SongStyle         string      `json:"song_style"`
	Vocal             Vocal       `json:"vocal"`
	RecipientRelation string      `json:"recipient_relation"`
	RecipientName     string      `json:"recipient_name"`
	IncludeName       bool        `json:"include_name"`
	Story             string      `json:"story" gorm:"type:text"`
	Notes             string      `json:"notes" gorm:"type:text"`
	RevisionRequest   string      `json:"revision_request,omitempty" gorm:"type:text"`
	Status            OrderStatus `json:"status" gorm:"index"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewOrder snapshots a confirmed conversation into an order.
func NewOrder(id string, conv *Conversation, now time.Time) *Order {
	s := conv.State
	vocal, _ := s.Vocal()
	includeName, _ := s.Bool(SlotIncludeName)
	return &Order{
		ID:                id,
		ConversationID:    conv.ID,
		Channel:           conv.Channel,
		UserRef:           conv.UserRef,
		SongType:          s.Value(SlotSongType),
		ArtistStyle:       s.Value(SlotArtistStyle),
		SongStyle:         s.Value(SlotSongStyle),
		Vocal:             vocal,
		RecipientRelation: s.Value(SlotRecipientRelation),
		RecipientName:     s.Value(SlotRecipientName),
		IncludeName:       includeName,
		Story:             s.Value(SlotStory),
		Notes:             s.Value(SlotNotes),
		Status:            OrderStatusConfirmed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
