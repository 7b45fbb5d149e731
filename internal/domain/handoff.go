package domain

import (
	"time"

	"github.com/google/uuid"
)

type TriggerType string

const (
	TriggerManual              TriggerType = "manual"
	TriggerCounterpartyRequest TriggerType = "counterparty_request"
	TriggerLegal               TriggerType = "legal"
	TriggerNegativeSentiment   TriggerType = "negative_sentiment"
	TriggerLowConfidence       TriggerType = "low_confidence"
)

func ValidTriggerType(t TriggerType) bool {
	switch t {
	case TriggerManual, TriggerCounterpartyRequest, TriggerLegal,
		TriggerNegativeSentiment, TriggerLowConfidence:
		return true
	}
	return false
}

type HandoffStatus string

const (
	HandoffPending  HandoffStatus = "pending"
	HandoffResolved HandoffStatus = "resolved"
)

// HandoffRecord documents a transfer of control to a human operator: why it
// happened, what the conversation looked like at that moment, and who closed
// it out.
type HandoffRecord struct {
	ID               uuid.UUID     `json:"id"`
	ConversationID   uuid.UUID     `json:"conversation_id"`
	Reason           string        `json:"reason"`
	TriggerType      TriggerType   `json:"trigger_type"`
	Status           HandoffStatus `json:"status"`
	LastReplyExcerpt string        `json:"last_reply_excerpt,omitempty"`
	InteractionCount int           `json:"interaction_count"`
	Duration         time.Duration `json:"duration"`
	PolicyDecisionID *uuid.UUID    `json:"policy_decision_id,omitempty"`
	ResolvedBy       string        `json:"resolved_by,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	ResolvedAt       *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
