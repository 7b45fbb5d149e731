package service

import (
	"context"
	"errors"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrConversationCompleted = errors.New("conversation is completed")
	ErrInvalidTransition     = errors.New("invalid state transition")
)

// ConversationService is the guarded state machine. Every transition loads
// the current row, checks the guard, and persists the new state, controller
// and escalation reason together.
type ConversationService struct {
	convs  domain.ConversationStore
	logger *zap.Logger
}

func NewConversationService(convs domain.ConversationStore, logger *zap.Logger) *ConversationService {
	return &ConversationService{convs: convs, logger: logger}
}

func (s *ConversationService) Create(ctx context.Context, counterpartyID uuid.UUID) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		CounterpartyID: counterpartyID,
		State:          domain.StateActive,
		Controller:     domain.ControllerAgent,
	}
	if err := s.convs.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

// MayAgentReply is the guard the outbound pipeline consults before letting
// the automated agent speak.
func (s *ConversationService) MayAgentReply(ctx context.Context, id uuid.UUID) (bool, error) {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return conv.MayAgentReply(), nil
}

// PauseForOperator moves an active conversation into awaiting_operator, e.g.
// while an operator reviews a flagged reply without taking control yet.
func (s *ConversationService) PauseForOperator(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		if conv.State != domain.StateActive {
			return "", "", nil, ErrInvalidTransition
		}
		return domain.StateAwaitingOperator, conv.Controller, conv.EscalationReason, nil
	})
}

// Resume returns a waiting or paused conversation to active and clears any
// escalation reason.
func (s *ConversationService) Resume(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		if conv.State != domain.StateAwaitingOperator && conv.State != domain.StatePaused {
			return "", "", nil, ErrInvalidTransition
		}
		return domain.StateActive, conv.Controller, nil, nil
	})
}

// MarkHandoff hands control to the human operator from any non-terminal
// state.
func (s *ConversationService) MarkHandoff(ctx context.Context, id uuid.UUID, reason string) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		return domain.StateHandoff, domain.ControllerOperator, &reason, nil
	})
}

// ResolveHandoff returns control to the agent, or completes the conversation
// when the operator closed it out entirely.
func (s *ConversationService) ResolveHandoff(ctx context.Context, id uuid.UUID, complete bool) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		if conv.State != domain.StateHandoff {
			return "", "", nil, ErrInvalidTransition
		}
		if complete {
			return domain.StateCompleted, conv.Controller, nil, nil
		}
		return domain.StateActive, domain.ControllerAgent, nil, nil
	})
}

// Complete terminates the conversation from any non-terminal state.
func (s *ConversationService) Complete(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		return domain.StateCompleted, conv.Controller, nil, nil
	})
}

// SetController is used by agent-to-agent transfers: state is untouched,
// only ownership changes.
func (s *ConversationService) SetController(ctx context.Context, id uuid.UUID, controller domain.Controller) error {
	return s.transition(ctx, id, func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error) {
		return conv.State, controller, conv.EscalationReason, nil
	})
}

type transitionFn func(conv *domain.Conversation) (domain.ConversationState, domain.Controller, *string, error)

func (s *ConversationService) transition(ctx context.Context, id uuid.UUID, fn transitionFn) error {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if conv.State.Terminal() {
		return ErrConversationCompleted
	}

	state, controller, reason, err := fn(conv)
	if err != nil {
		return err
	}

	if err := s.convs.UpdateState(ctx, id, state, controller, reason); err != nil {
		return err
	}
	s.logger.Info("conversation transition",
		zap.String("conversation_id", id.String()),
		zap.String("from", string(conv.State)),
		zap.String("to", string(state)),
		zap.String("controller", string(controller)))
	return nil
}
