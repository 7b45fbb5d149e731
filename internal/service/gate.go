package service

import (
	"context"
	"regexp"
	"sync"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Below this combined confidence the inbound pipeline escalates rather than
// letting the agent guess.
const escalationConfidenceFloor = 0.3

// Explicit requests to talk to a person.
var humanRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(talk|speak) (to|with) a (human|person|real person)\b`),
	regexp.MustCompile(`(?i)\breal (human|person)\b`),
	regexp.MustCompile(`(?i)quero falar com (uma pessoa|um humano|algu[eé]m)`),
	regexp.MustCompile(`(?i)me (passa|transfere) (para|pra) (uma pessoa|algu[eé]m)`),
}

// Legal or contractual topics the agent must never handle alone.
var legalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(lawyer|lawsuit|legal action|sue|attorney)\b`),
	regexp.MustCompile(`(?i)\b(advogad[oa]|processo judicial|processar|justi[cç]a do trabalho)\b`),
	regexp.MustCompile(`(?i)\b(contract dispute|breach of contract|quebra de contrato)\b`),
}

// keyedMutex serializes work per conversation. Entries are refcounted and
// removed when the last holder releases, so the map does not grow with the
// total number of conversations ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*keyedLock)}
}

func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &keyedLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// InboundSignals carries upstream confidence data for one inbound message.
// Pointer fields are optional.
type InboundSignals struct {
	ShiftConfidence    *float64
	FacilityConfidence *float64
	MemorySimilarity   *float64
	ProfileComplete    bool
}

// GateService is the policy pipeline. ScreenInbound runs on every message
// from the counterparty, ScreenOutbound on every candidate reply before it is
// sent, and RecordReply after a reply actually goes out. All three serialize
// on the conversation so detector state never interleaves.
type GateService struct {
	convs         domain.ConversationStore
	sessions      domain.SessionStore
	conversations *ConversationService
	confrontation *ConfrontationService
	contradiction *ContradictionService
	loops         *LoopService
	uncertainty   *UncertaintyService
	persona       *PersonaService
	handoffs      *HandoffService
	events        domain.EventEmitter
	locks         *keyedMutex
	logger        *zap.Logger
}

func NewGateService(
	convs domain.ConversationStore,
	sessions domain.SessionStore,
	conversations *ConversationService,
	confrontation *ConfrontationService,
	contradiction *ContradictionService,
	loops *LoopService,
	uncertainty *UncertaintyService,
	persona *PersonaService,
	handoffs *HandoffService,
	events domain.EventEmitter,
	logger *zap.Logger,
) *GateService {
	return &GateService{
		convs:         convs,
		sessions:      sessions,
		conversations: conversations,
		confrontation: confrontation,
		contradiction: contradiction,
		loops:         loops,
		uncertainty:   uncertainty,
		persona:       persona,
		handoffs:      handoffs,
		events:        events,
		locks:         newKeyedMutex(),
		logger:        logger,
	}
}

// ScreenInbound inspects a counterparty message before the agent drafts a
// reply. Escalation failures are logged, not returned: a broken handoff path
// must not silence the conversation.
func (s *GateService) ScreenInbound(ctx context.Context, conversationID uuid.UUID, text string, signals InboundSignals) (*domain.InboundDecision, error) {
	unlock := s.locks.lock(conversationID)
	defer unlock()

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	decision := &domain.InboundDecision{
		PolicyDecisionID: uuid.New(),
		MayAgentReply:    conv.MayAgentReply(),
	}

	confr := s.confrontation.Detect(text, conv.ConfrontationCount)
	decision.Confrontation = confr
	if confr.HasConfrontation && confr.Type == domain.ConfrontationVeracity {
		if n, err := s.convs.IncrementConfrontations(ctx, conversationID); err != nil {
			s.logger.Warn("confrontation counter update failed",
				zap.String("conversation_id", conversationID.String()), zap.Error(err))
		} else {
			conv.ConfrontationCount = n
		}
	}

	decision.Uncertainty = s.uncertainty.Score(UncertaintyInput{
		ShiftConfidence:    signals.ShiftConfidence,
		FacilityConfidence: signals.FacilityConfidence,
		ProfileComplete:    signals.ProfileComplete,
		MemorySimilarity:   signals.MemorySimilarity,
		ConfrontationCount: conv.ConfrontationCount,
	})

	trigger, reason := s.inboundTrigger(text, decision)
	if trigger != "" && conv.MayAgentReply() {
		record, err := s.handoffs.Initiate(ctx, conversationID, reason, trigger, &decision.PolicyDecisionID)
		if err != nil {
			s.logger.Error("inbound escalation failed",
				zap.String("conversation_id", conversationID.String()),
				zap.String("trigger_type", string(trigger)),
				zap.Error(err))
		} else {
			decision.Escalated = true
			decision.HandoffID = &record.ID
			decision.MayAgentReply = false
		}
	}

	s.events.Emit(ctx, "screen.inbound", map[string]any{
		"conversation_id":    conversationID.String(),
		"policy_decision_id": decision.PolicyDecisionID.String(),
		"confrontation":      decision.Confrontation.HasConfrontation,
		"confidence":         decision.Uncertainty.Confidence,
		"escalated":          decision.Escalated,
	})
	return decision, nil
}

// inboundTrigger picks the escalation trigger for an inbound message, in
// priority order: explicit human request, legal topic, repeated
// confrontation, then low confidence.
func (s *GateService) inboundTrigger(text string, decision *domain.InboundDecision) (domain.TriggerType, string) {
	for _, re := range humanRequestPatterns {
		if re.MatchString(text) {
			return domain.TriggerCounterpartyRequest, "counterparty asked for a human"
		}
	}
	for _, re := range legalPatterns {
		if re.MatchString(text) {
			return domain.TriggerLegal, "legal topic raised"
		}
	}
	if decision.Confrontation.MustEscalate {
		return domain.TriggerNegativeSentiment, "repeated veracity confrontation"
	}
	if decision.Uncertainty.Confidence < escalationConfidenceFloor {
		return domain.TriggerLowConfidence, "combined confidence below floor"
	}
	return "", ""
}

// ScreenOutbound vets a candidate agent reply. A single session read backs
// the contradiction and loop checks.
func (s *GateService) ScreenOutbound(ctx context.Context, conversationID uuid.UUID, candidate string, opts PersonaOptions) (*domain.OutboundVerdict, error) {
	unlock := s.locks.lock(conversationID)
	defer unlock()

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	verdict := &domain.OutboundVerdict{
		PolicyDecisionID: uuid.New(),
		Action:           domain.ActionSend,
	}

	if !conv.MayAgentReply() {
		verdict.Action = domain.ActionHold
		verdict.Reasons = append(verdict.Reasons, "agent does not control this conversation")
		return verdict, nil
	}

	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("outbound session load failed",
			zap.String("conversation_id", conversationID.String()), zap.Error(err))
		sess = &domain.DetectorSession{ConversationID: conversationID}
	}

	verdict.Compliance = s.persona.Validate(candidate, opts)
	verdict.Contradiction = s.contradiction.Evaluate(sess, candidate)
	verdict.Loop = s.loops.Evaluate(sess, candidate)

	if !verdict.Compliance.Valid {
		verdict.Action = domain.ActionRegenerate
		verdict.Reasons = append(verdict.Reasons, "persona compliance failed")
	}
	if verdict.Contradiction.HasContradiction {
		verdict.Action = domain.ActionRegenerate
		verdict.Reasons = append(verdict.Reasons, "candidate contradicts earlier statement")
	}
	if verdict.Loop.InLoop {
		verdict.Action = domain.ActionRegenerate
		verdict.Reasons = append(verdict.Reasons, "candidate repeats earlier replies")
	}
	if verdict.Loop.MustIntervene {
		verdict.Action = domain.ActionEscalate
		verdict.Reasons = append(verdict.Reasons, "loop persists after repeated variation")
		record, err := s.handoffs.Initiate(ctx, conversationID,
			"agent stuck in a reply loop", domain.TriggerLowConfidence, &verdict.PolicyDecisionID)
		if err != nil {
			s.logger.Error("loop escalation failed",
				zap.String("conversation_id", conversationID.String()), zap.Error(err))
		} else {
			verdict.HandoffID = &record.ID
		}
	}

	s.events.Emit(ctx, "screen.outbound", map[string]any{
		"conversation_id":    conversationID.String(),
		"policy_decision_id": verdict.PolicyDecisionID.String(),
		"action":             string(verdict.Action),
		"reasons":            verdict.Reasons,
	})
	return verdict, nil
}

// RecordReply stores a sent agent reply so future screening sees it. One
// session read and one write cover both the loop and contradiction state.
func (s *GateService) RecordReply(ctx context.Context, conversationID uuid.UUID, text string) error {
	unlock := s.locks.lock(conversationID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	s.loops.Observe(sess, text)
	s.contradiction.Observe(sess, text)
	return s.sessions.Put(ctx, sess)
}
