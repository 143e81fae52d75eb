package domain

import "time"

type FunnelEventType string

const (
	EventConversationStarted FunnelEventType = "conversation_started"
	EventSlotFilled          FunnelEventType = "slot_filled"
	EventSlotCorrected       FunnelEventType = "slot_corrected"
	EventFallback            FunnelEventType = "fallback"
	EventValidationRejected  FunnelEventType = "validation_rejected"
	EventContractViolation   FunnelEventType = "contract_violation"
	EventOrderConfirmed      FunnelEventType = "order_confirmed"
	EventOrderCancelled      FunnelEventType = "order_cancelled"
	EventRevisionRequested   FunnelEventType = "revision_requested"
	EventLyricsApproved      FunnelEventType = "lyrics_approved"
)

// FunnelEvent is an analytics beacon describing conversation progress.
type FunnelEvent struct {
	Type           FunnelEventType `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Channel        Channel         `json:"channel"`
	Step           Step            `json:"step"`
	Slot           SlotName        `json:"slot,omitempty"`
	Detail         string          `json:"detail,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
