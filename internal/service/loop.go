package service

import (
	"context"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// A stored utterance counts as "similar" at or above this ratio.
	loopSimilarityThreshold = 0.8
	// Two similar priors mean the agent is circling.
	loopRepeatCount = 2
	// Three mean it must stop repeating itself.
	loopInterveneCount = 3
)

const (
	LoopActionContinue  = "continue normally"
	LoopActionVary      = "try a different reply"
	LoopActionIntervene = "intervene - vary approach or escalate"
)

// LoopService flags candidate replies that would repeat what the agent has
// already said. Detection never errors: if the session cannot be loaded the
// candidate passes, which only costs one redundant message.
type LoopService struct {
	sessions domain.SessionStore
	logger   *zap.Logger
}

func NewLoopService(sessions domain.SessionStore, logger *zap.Logger) *LoopService {
	return &LoopService{sessions: sessions, logger: logger}
}

// Add records a sent agent utterance in the conversation's session.
func (s *LoopService) Add(ctx context.Context, conversationID uuid.UUID, utterance string) {
	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("loop session load failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return
	}
	s.Observe(sess, utterance)
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Warn("loop session save failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}
}

// Observe appends the utterance to an already-loaded session. Used by the
// gate so one session write covers every detector.
func (s *LoopService) Observe(sess *domain.DetectorSession, utterance string) {
	sess.AppendReply(utterance)
}

// Detect loads the session and evaluates the candidate against it.
func (s *LoopService) Detect(ctx context.Context, conversationID uuid.UUID, candidate string) domain.LoopResult {
	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("loop session load failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return domain.LoopResult{Action: LoopActionContinue}
	}
	return s.Evaluate(sess, candidate)
}

// Evaluate compares the candidate with every stored utterance. Empty history
// always yields "no loop".
func (s *LoopService) Evaluate(sess *domain.DetectorSession, candidate string) domain.LoopResult {
	result := domain.LoopResult{Action: LoopActionContinue}
	for _, prior := range sess.Replies {
		sim := Similarity(candidate, prior)
		if sim > result.MaxSimilarity {
			result.MaxSimilarity = sim
		}
		if sim >= loopSimilarityThreshold {
			result.SimilarCount++
		}
	}

	result.InLoop = result.SimilarCount >= loopRepeatCount
	result.MustIntervene = result.SimilarCount >= loopInterveneCount
	switch {
	case result.MustIntervene:
		result.Action = LoopActionIntervene
	case result.InLoop:
		result.Action = LoopActionVary
	}
	return result
}
