package service

import (
	"context"
	"errors"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	ErrContactMissing       = errors.New("counterparty has no contact detail")
	ErrHandoffNotFound      = errors.New("handoff not found")
	ErrHandoffResolved      = errors.New("handoff already resolved")
	ErrAgentNotRegistered   = errors.New("agent not registered in directory")
)

// Label applied on the support console while a human owns the conversation.
const handoffConsoleLabel = "human-handoff"

const lastReplyExcerptLimit = 120

// What the counterparty is told when a human takes over, per trigger.
var transitionMessages = map[domain.TriggerType]string{
	domain.TriggerManual:              "passing you to a colleague who can take this further, one moment",
	domain.TriggerCounterpartyRequest: "of course! connecting you with someone from the team right now",
	domain.TriggerLegal:               "let me bring in the right person to go over this properly with you",
	domain.TriggerNegativeSentiment:   "I hear you - someone from our team will pick this up with you directly",
	domain.TriggerLowConfidence:       "let me get a colleague who has the full picture to continue with you",
}

// HandoffService orchestrates control transfers between the automated agent
// and human operators, plus the lighter agent-to-agent variant. The primary
// writes (conversation state, handoff record) decide success; messaging and
// notifications are best-effort.
type HandoffService struct {
	convs    domain.ConversationStore
	parties  domain.CounterpartyStore
	handoffs domain.HandoffStore
	sessions domain.SessionStore
	sender   domain.MessageSender
	events   domain.EventEmitter
	notifier domain.OperatorNotifier
	console  domain.ConsoleMirror
	agents   domain.AgentDirectory
	logger   *zap.Logger
}

func NewHandoffService(
	convs domain.ConversationStore,
	parties domain.CounterpartyStore,
	handoffs domain.HandoffStore,
	sessions domain.SessionStore,
	sender domain.MessageSender,
	events domain.EventEmitter,
	notifier domain.OperatorNotifier,
	console domain.ConsoleMirror,
	agents domain.AgentDirectory,
	logger *zap.Logger,
) *HandoffService {
	return &HandoffService{
		convs:    convs,
		parties:  parties,
		handoffs: handoffs,
		sessions: sessions,
		sender:   sender,
		events:   events,
		notifier: notifier,
		console:  console,
		agents:   agents,
		logger:   logger,
	}
}

// Initiate transfers control of a conversation to a human operator. Nothing
// is mutated until the conversation and its counterparty contact are known
// to exist; after the controller flip, a failed record insert rolls the flip
// back so the conversation is never half-escalated.
func (s *HandoffService) Initiate(ctx context.Context, conversationID uuid.UUID, reason string, trigger domain.TriggerType, policyDecisionID *uuid.UUID) (*domain.HandoffRecord, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.State.Terminal() {
		return nil, ErrConversationCompleted
	}

	party, err := s.parties.GetByID(ctx, conv.CounterpartyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCounterpartyNotFound
		}
		return nil, err
	}
	if party.Contact == "" {
		return nil, ErrContactMissing
	}

	excerpt, interactions := s.sessionSnapshot(ctx, conversationID)

	// Best-effort transition message; a delivery failure must not block the
	// actual handoff.
	text := transitionMessages[trigger]
	if text == "" {
		text = transitionMessages[domain.TriggerManual]
	}
	if res, err := s.sender.Send(ctx, party.Contact, text, map[string]string{
		"conversation_id": conversationID.String(),
		"kind":            "handoff_transition",
	}); err != nil {
		s.logger.Warn("transition message failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	} else if res.Blocked {
		s.logger.Warn("transition message blocked",
			zap.String("conversation_id", conversationID.String()),
			zap.String("block_reason", res.BlockReason))
	}

	if err := s.convs.UpdateState(ctx, conversationID, domain.StateHandoff, domain.ControllerOperator, &reason); err != nil {
		return nil, err
	}

	record := &domain.HandoffRecord{
		ConversationID:   conversationID,
		Reason:           reason,
		TriggerType:      trigger,
		Status:           domain.HandoffPending,
		LastReplyExcerpt: excerpt,
		InteractionCount: interactions,
		Duration:         time.Since(conv.CreatedAt),
		PolicyDecisionID: policyDecisionID,
	}
	if err := s.handoffs.Create(ctx, record); err != nil {
		// Compensate: undo the controller flip so the conversation does not
		// sit human-controlled with no record an operator can find.
		if rbErr := s.convs.UpdateState(ctx, conversationID, conv.State, conv.Controller, conv.EscalationReason); rbErr != nil {
			s.logger.Error("handoff rollback failed",
				zap.String("conversation_id", conversationID.String()), zap.Error(rbErr))
		}
		return nil, err
	}

	s.events.Emit(ctx, "handoff.initiated", map[string]any{
		"conversation_id": conversationID.String(),
		"handoff_id":      record.ID.String(),
		"trigger_type":    string(trigger),
		"reason":          reason,
	})

	if err := s.notifier.Notify(ctx, conv, domain.OperatorEvent{
		Kind:    domain.OperatorEventHandoffInitiated,
		Handoff: record,
		Reason:  reason,
	}); err != nil {
		s.logger.Warn("operator notify failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}
	if err := s.console.AddLabel(ctx, conversationID, handoffConsoleLabel); err != nil {
		s.logger.Warn("console label failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}
	if err := s.console.EchoMessage(ctx, conversationID, text); err != nil {
		s.logger.Warn("console echo failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}

	s.logger.Info("handoff initiated",
		zap.String("conversation_id", conversationID.String()),
		zap.String("handoff_id", record.ID.String()),
		zap.String("trigger_type", string(trigger)))
	return record, nil
}

// Finalize returns control to the automated agent and closes out every
// pending record for the conversation.
func (s *HandoffService) Finalize(ctx context.Context, conversationID uuid.UUID, notes, resolvedBy string) error {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	if conv.State.Terminal() {
		return ErrConversationCompleted
	}

	if err := s.convs.UpdateState(ctx, conversationID, domain.StateActive, domain.ControllerAgent, nil); err != nil {
		return err
	}

	if err := s.console.RemoveLabel(ctx, conversationID, handoffConsoleLabel); err != nil {
		s.logger.Warn("console label removal failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}

	resolved, err := s.handoffs.ResolvePendingByConversation(ctx, conversationID, resolvedBy, notes)
	if err != nil {
		s.logger.Warn("pending handoff resolution failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}

	s.events.Emit(ctx, "handoff.finalized", map[string]any{
		"conversation_id": conversationID.String(),
		"resolved_count":  resolved,
		"resolved_by":     resolvedBy,
	})
	if err := s.notifier.Notify(ctx, conv, domain.OperatorEvent{
		Kind:   domain.OperatorEventHandoffResolved,
		Reason: notes,
	}); err != nil {
		s.logger.Warn("operator notify failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}

	s.logger.Info("handoff finalized",
		zap.String("conversation_id", conversationID.String()),
		zap.Int64("resolved_count", resolved))
	return nil
}

// Resolve closes a single record without touching conversation-level state,
// for operators working through the queue.
func (s *HandoffService) Resolve(ctx context.Context, handoffID uuid.UUID, resolvedBy, notes string) (*domain.HandoffRecord, error) {
	existing, err := s.handoffs.GetByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHandoffNotFound
		}
		return nil, err
	}
	if existing.Status == domain.HandoffResolved {
		return nil, ErrHandoffResolved
	}

	record, err := s.handoffs.Resolve(ctx, handoffID, resolvedBy, notes)
	if err != nil {
		return nil, err
	}
	s.events.Emit(ctx, "handoff.resolved", map[string]any{
		"handoff_id":  handoffID.String(),
		"resolved_by": resolvedBy,
	})
	return record, nil
}

// Transfer moves a conversation between registered automated roles, e.g.
// from the conversational role to an analytics role. No HandoffRecord is
// written; this is routine choreography, not an escalation.
func (s *HandoffService) Transfer(ctx context.Context, conversationID uuid.UUID, fromAgent, toAgent string) error {
	if _, ok := s.agents.Lookup(fromAgent); !ok {
		return ErrAgentNotRegistered
	}
	if _, ok := s.agents.Lookup(toAgent); !ok {
		return ErrAgentNotRegistered
	}

	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	if conv.State.Terminal() {
		return ErrConversationCompleted
	}

	if err := s.convs.UpdateState(ctx, conversationID, conv.State, domain.Controller(toAgent), conv.EscalationReason); err != nil {
		return err
	}
	s.events.Emit(ctx, "handoff.transferred", map[string]any{
		"conversation_id": conversationID.String(),
		"from_agent":      fromAgent,
		"to_agent":        toAgent,
	})
	s.logger.Info("agent transfer",
		zap.String("conversation_id", conversationID.String()),
		zap.String("from", fromAgent),
		zap.String("to", toAgent))
	return nil
}

// sessionSnapshot captures the metadata stored on the record: how the last
// agent reply read and how much back-and-forth preceded the handoff.
func (s *HandoffService) sessionSnapshot(ctx context.Context, conversationID uuid.UUID) (string, int) {
	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("session snapshot failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return "", 0
	}
	excerpt := ""
	if len(sess.Replies) > 0 {
		excerpt = sess.Replies[len(sess.Replies)-1]
		if len(excerpt) > lastReplyExcerptLimit {
			excerpt = excerpt[:lastReplyExcerptLimit]
		}
	}
	return excerpt, len(sess.Replies)
}
