package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ConversationStore interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	UpdateState(ctx context.Context, id uuid.UUID, state ConversationState, controller Controller, escalationReason *string) error
	// IncrementConfrontations atomically bumps the stored confrontation
	// counter and returns the new value.
	IncrementConfrontations(ctx context.Context, id uuid.UUID) (int, error)
}

type CounterpartyStore interface {
	Create(ctx context.Context, p *Counterparty) error
	GetByID(ctx context.Context, id uuid.UUID) (*Counterparty, error)
}

type HandoffStore interface {
	Create(ctx context.Context, h *HandoffRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*HandoffRecord, error)
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy, notes string) (*HandoffRecord, error)
	ResolvePendingByConversation(ctx context.Context, conversationID uuid.UUID, resolvedBy, notes string) (int64, error)
	ListPendingOlderThan(ctx context.Context, age time.Duration) ([]HandoffRecord, error)
}

// SessionStore keeps detector sessions in an externally addressable keyed
// store. Get returns a fresh empty session when none exists yet.
type SessionStore interface {
	Get(ctx context.Context, conversationID uuid.UUID) (*DetectorSession, error)
	Put(ctx context.Context, s *DetectorSession) error
	Clear(ctx context.Context, conversationID uuid.UUID) error
}

// SendResult reports the outcome of an outbound message delivery attempt.
type SendResult struct {
	Success     bool   `json:"success"`
	Blocked     bool   `json:"blocked"`
	BlockReason string `json:"block_reason,omitempty"`
}

// MessageSender delivers a message to a counterparty contact through the
// messaging gateway.
type MessageSender interface {
	Send(ctx context.Context, contact, text string, meta map[string]string) (*SendResult, error)
}

// EventEmitter records an audit event. Fire-and-forget: implementations log
// failures instead of returning them.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload map[string]any)
}

type OperatorEventKind string

const (
	OperatorEventHandoffInitiated OperatorEventKind = "handoff_initiated"
	OperatorEventHandoffResolved  OperatorEventKind = "handoff_resolved"
	OperatorEventHandoffReminder  OperatorEventKind = "handoff_reminder"
)

type OperatorEvent struct {
	Kind    OperatorEventKind `json:"kind"`
	Handoff *HandoffRecord    `json:"handoff,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

// OperatorNotifier pushes handoff activity to the human operator channel.
// Best-effort: callers swallow errors after logging them.
type OperatorNotifier interface {
	Notify(ctx context.Context, conversation *Conversation, event OperatorEvent) error
}

// ConsoleMirror reflects control changes on a connected support console so
// operators see labels and transition messages where they already work.
type ConsoleMirror interface {
	EchoMessage(ctx context.Context, conversationID uuid.UUID, text string) error
	AddLabel(ctx context.Context, conversationID uuid.UUID, label string) error
	RemoveLabel(ctx context.Context, conversationID uuid.UUID, label string) error
}

// AgentCapability describes one thing a registered automated role can do.
type AgentCapability struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AgentDirectory is the capability registry consulted before an
// agent-to-agent transfer.
type AgentDirectory interface {
	Register(name string, caps []AgentCapability)
	Lookup(name string) ([]AgentCapability, bool)
}
