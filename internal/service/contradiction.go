package service

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// An amount drift beyond this fraction of the previous value is a
// contradiction; anything inside it is treated as rounding or fees.
const valueDriftTolerance = 0.10

var (
	// Currency-prefixed numbers: "R$ 2.500", "R$2.500,00", "$ 1,200.50".
	amountPattern = regexp.MustCompile(`(?i)(?:R\$|US\$|\$)\s*(\d[\d.,]*)`)

	// Institution mentions: a facility keyword followed by a proper name,
	// optionally joined by Portuguese connectives.
	entityPattern = regexp.MustCompile(`\b(?:Hospital|Cl[ií]nica|Instituto|Centro|Santa Casa|UPA|Maternidade)\s+(?:(?:de|da|do|das|dos)\s+)?[A-ZÀ-Ý][\wÀ-ÿ'-]*(?:\s+(?:(?:de|da|do|das|dos)\s+)?[A-ZÀ-Ý][\wÀ-ÿ'-]*)*`)
)

const (
	contradictionActionValue  = "regenerate keeping the previously quoted amount"
	contradictionActionEntity = "regenerate keeping the previously named institution"
)

// ContradictionService checks a candidate reply against the amounts and
// institution names the agent has already stated in this conversation.
// Extraction is deliberately regex-level: cheap, language-tolerant, and good
// enough to catch the agent quoting two different rates for the same shift.
type ContradictionService struct {
	sessions domain.SessionStore
	logger   *zap.Logger
}

func NewContradictionService(sessions domain.SessionStore, logger *zap.Logger) *ContradictionService {
	return &ContradictionService{sessions: sessions, logger: logger}
}

// AddReply extracts facts from a sent reply and stores them in the session.
func (s *ContradictionService) AddReply(ctx context.Context, conversationID uuid.UUID, reply string) {
	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("contradiction session load failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return
	}
	sess.AppendReply(reply)
	s.Observe(sess, reply)
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Warn("contradiction session save failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}
}

// Observe extracts amounts and entities from the reply into an
// already-loaded session. The gate uses this so a single session write
// covers every detector.
func (s *ContradictionService) Observe(sess *domain.DetectorSession, reply string) {
	for _, a := range extractAmounts(reply) {
		sess.AppendAmount(a)
	}
	for _, e := range extractEntities(reply) {
		sess.AppendEntity(e)
	}
}

// Detect loads the session and evaluates the candidate against it.
func (s *ContradictionService) Detect(ctx context.Context, conversationID uuid.UUID, candidate string) domain.ContradictionResult {
	sess, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("contradiction session load failed", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return domain.ContradictionResult{}
	}
	return s.Evaluate(sess, candidate)
}

// Evaluate runs the value check first, then the entity check. No stored
// history means no contradiction by construction.
func (s *ContradictionService) Evaluate(sess *domain.DetectorSession, candidate string) domain.ContradictionResult {
	if prev, ok := sess.LastAmount(); ok {
		if candAmounts := extractAmounts(candidate); len(candAmounts) > 0 && prev.Value > 0 {
			drift := math.Abs(candAmounts[0].Value-prev.Value) / prev.Value
			if drift > valueDriftTolerance {
				return domain.ContradictionResult{
					HasContradiction:  true,
					Kind:              domain.ContradictionValue,
					PreviousValue:     prev.Raw,
					NewValue:          candAmounts[0].Raw,
					RecommendedAction: contradictionActionValue,
				}
			}
		}
	}

	if prevEntity, ok := sess.LastEntity(); ok {
		if candEntities := extractEntities(candidate); len(candEntities) > 0 {
			if !sameEntity(prevEntity, candEntities[0]) {
				return domain.ContradictionResult{
					HasContradiction:  true,
					Kind:              domain.ContradictionEntity,
					PreviousValue:     prevEntity,
					NewValue:          candEntities[0],
					RecommendedAction: contradictionActionEntity,
				}
			}
		}
	}

	return domain.ContradictionResult{}
}

func extractAmounts(text string) []domain.AmountMention {
	var out []domain.AmountMention
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseAmount(m[1]); ok {
			out = append(out, domain.AmountMention{Raw: strings.TrimSpace(m[0]), Value: v})
		}
	}
	return out
}

func extractEntities(text string) []string {
	return entityPattern.FindAllString(text, -1)
}

// sameEntity tolerates simple aliases: "Hospital Santa Clara" and
// "Santa Clara" refer to the same place.
func sameEntity(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	return la == lb || strings.Contains(la, lb) || strings.Contains(lb, la)
}

// parseAmount turns a pt-BR or en formatted number into a float. A trailing
// separator group of one or two digits is the decimal part ("2.500,00",
// "1,200.50"); everything else is thousands grouping ("2.500" is 2500).
func parseAmount(raw string) (float64, bool) {
	lastSep := strings.LastIndexAny(raw, ".,")
	intPart := raw
	fracPart := ""
	if lastSep >= 0 && len(raw)-lastSep-1 <= 2 {
		intPart = raw[:lastSep]
		fracPart = raw[lastSep+1:]
	}

	var sb strings.Builder
	for _, r := range intPart {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if digits == "" {
		return 0, false
	}

	var value float64
	for _, r := range digits {
		value = value*10 + float64(r-'0')
	}
	if fracPart != "" {
		frac := 0.0
		scale := 1.0
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, false
			}
			frac = frac*10 + float64(r-'0')
			scale *= 10
		}
		value += frac / scale
	}
	return value, true
}
