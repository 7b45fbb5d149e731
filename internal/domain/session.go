package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionHistoryLimit bounds every per-conversation list a detector keeps.
const SessionHistoryLimit = 10

// AmountMention is a monetary value extracted from an agent reply. Raw keeps
// the original surface form for operator-facing messages.
type AmountMention struct {
	Raw   string  `json:"raw"`
	Value float64 `json:"value"`
}

// DetectorSession is the per-conversation state shared by the loop and
// contradiction detectors: the last few agent utterances plus the amounts and
// institution names previously stated. Sessions are created lazily and live
// in an external keyed store so they survive restarts and replicas.
type DetectorSession struct {
	ConversationID uuid.UUID       `json:"conversation_id"`
	Replies        []string        `json:"replies,omitempty"`
	Amounts        []AmountMention `json:"amounts,omitempty"`
	Entities       []string        `json:"entities,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AppendReply records an agent utterance, keeping at most
// SessionHistoryLimit entries.
func (s *DetectorSession) AppendReply(reply string) {
	s.Replies = appendBounded(s.Replies, reply)
}

func (s *DetectorSession) AppendAmount(a AmountMention) {
	s.Amounts = appendBounded(s.Amounts, a)
}

func (s *DetectorSession) AppendEntity(name string) {
	s.Entities = appendBounded(s.Entities, name)
}

// LastAmount returns the most recently stated amount, if any.
func (s *DetectorSession) LastAmount() (AmountMention, bool) {
	if len(s.Amounts) == 0 {
		return AmountMention{}, false
	}
	return s.Amounts[len(s.Amounts)-1], true
}

// LastEntity returns the most recently mentioned institution, if any.
func (s *DetectorSession) LastEntity() (string, bool) {
	if len(s.Entities) == 0 {
		return "", false
	}
	return s.Entities[len(s.Entities)-1], true
}

func appendBounded[T any](list []T, v T) []T {
	list = append(list, v)
	if len(list) > SessionHistoryLimit {
		list = list[len(list)-SessionHistoryLimit:]
	}
	return list
}
