package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationState string

const (
	StateActive               ConversationState = "active"
	StateAwaitingOperator     ConversationState = "awaiting_operator"
	StateAwaitingCounterparty ConversationState = "awaiting_counterparty"
	StatePaused               ConversationState = "paused"
	StateHandoff              ConversationState = "handoff"
	StateCompleted            ConversationState = "completed"
)

func ValidConversationState(s string) bool {
	switch ConversationState(s) {
	case StateActive, StateAwaitingOperator, StateAwaitingCounterparty,
		StatePaused, StateHandoff, StateCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s ConversationState) Terminal() bool {
	return s == StateCompleted
}

// Controller identifies who currently owns the conversation. Besides the two
// built-in roles, agent-to-agent transfers may install any role name that is
// registered in the agent directory.
type Controller string

const (
	ControllerAgent    Controller = "agent"
	ControllerOperator Controller = "operator"
)

type Conversation struct {
	ID                 uuid.UUID         `json:"id"`
	CounterpartyID     uuid.UUID         `json:"counterparty_id"`
	State              ConversationState `json:"state"`
	Controller         Controller        `json:"controller"`
	EscalationReason   *string           `json:"escalation_reason,omitempty"`
	ConfrontationCount int               `json:"confrontation_count"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// MayAgentReply reports whether the automated agent is allowed to send the
// next reply. True only while the conversation is active and under agent
// control; every other combination means a human (or another role) owns it.
func (c *Conversation) MayAgentReply() bool {
	return c.State == StateActive && c.Controller == ControllerAgent
}
