package service

import (
	"math/rand/v2"
	"regexp"

	"github.com/dfarias/chaperone/internal/domain"
)

// confrontationPattern pairs a compiled regex with the surface label stored
// on the result for operator context.
type confrontationPattern struct {
	re    *regexp.Regexp
	label string
}

// Veracity confrontations: the counterparty is disputing something the agent
// said. Portuguese variants are included because most traffic is pt-BR.
var veracityPatterns = []confrontationPattern{
	{regexp.MustCompile(`(?i)that'?s (not true|false|a lie)`), "that's not true"},
	{regexp.MustCompile(`(?i)you('?re| are)? ?lying`), "you're lying"},
	{regexp.MustCompile(`(?i)(that|this|it) (doesn'?t|does not) exist`), "that doesn't exist"},
	{regexp.MustCompile(`(?i)wrong information`), "wrong information"},
	{regexp.MustCompile(`(?i)stop (lying|making things up)`), "stop lying"},
	{regexp.MustCompile(`(?i)(n[aã]o [eé] verdade|mentira|isso n[aã]o existe)`), "não é verdade"},
	{regexp.MustCompile(`(?i)informa[cç][aã]o errada`), "informação errada"},
}

// Bot-identity questions never escalate; they get a light deflection.
var botIdentityPatterns = []confrontationPattern{
	{regexp.MustCompile(`(?i)are you (a |an )?(bot|robot|ai|machine)`), "are you a bot"},
	{regexp.MustCompile(`(?i)is (this|that) (a )?(bot|robot|recording)`), "is this a bot"},
	{regexp.MustCompile(`(?i)(talking|chatting) (to|with) a (machine|robot|bot|computer)`), "talking to a machine"},
	{regexp.MustCompile(`(?i)voc[eê] [eé] um rob[oô]`), "você é um robô"},
	{regexp.MustCompile(`(?i)isso [eé] um rob[oô]`), "isso é um robô"},
}

// Deflection pools per escalation tier. Level 3 phrases hand the thread to a
// person; the others buy time without conceding anything.
var (
	level1Phrases = []string{
		"let me double-check that for you",
		"good catch, give me a minute to look at it again",
		"let me pull that up again to be sure",
	}
	level2Phrases = []string{
		"I hear you, let me check with the team and come back with the right details",
		"you're right to push on that, I'm confirming it now",
		"let me get the exact numbers before we go any further",
	}
	level3Phrases = []string{
		"I'm bringing in a colleague who handles this directly, one moment",
		"let me get someone from the team to sort this out with you personally",
		"I'll have our coordinator pick this up with you right now",
	}
	botDeflectPhrases = []string{
		"ha, I get that a lot - it's just me juggling a few chats at once",
		"last time I checked I still need coffee in the morning",
		"just a very caffeinated human on this side",
	}
)

// ConfrontationService is stateless: the running confrontation count lives on
// the conversation row and is passed in by the caller.
type ConfrontationService struct{}

func NewConfrontationService() *ConfrontationService {
	return &ConfrontationService{}
}

// Detect scans the counterparty text. confrontationCount is the number of
// veracity confrontations already recorded for the conversation; a fresh
// match is therefore confrontation number confrontationCount+1, which
// determines the escalation level.
func (s *ConfrontationService) Detect(text string, confrontationCount int) domain.ConfrontationResult {
	for _, p := range veracityPatterns {
		if p.re.MatchString(text) {
			level := escalationLevel(confrontationCount + 1)
			return domain.ConfrontationResult{
				HasConfrontation: true,
				Type:             domain.ConfrontationVeracity,
				Level:            level,
				MatchedPattern:   p.label,
				SuggestedPhrase:  pickPhrase(levelPhrases(level)),
				MustEscalate:     level == domain.Level3,
			}
		}
	}

	for _, p := range botIdentityPatterns {
		if p.re.MatchString(text) {
			return domain.ConfrontationResult{
				HasConfrontation: true,
				Type:             domain.ConfrontationBotIdentity,
				Level:            domain.Level1,
				MatchedPattern:   p.label,
				SuggestedPhrase:  pickPhrase(botDeflectPhrases),
				MustEscalate:     false,
			}
		}
	}

	return domain.ConfrontationResult{}
}

func escalationLevel(n int) domain.EscalationLevel {
	switch {
	case n <= 1:
		return domain.Level1
	case n == 2:
		return domain.Level2
	default:
		return domain.Level3
	}
}

func levelPhrases(level domain.EscalationLevel) []string {
	switch level {
	case domain.Level1:
		return level1Phrases
	case domain.Level2:
		return level2Phrases
	default:
		return level3Phrases
	}
}

func pickPhrase(pool []string) string {
	return pool[rand.IntN(len(pool))]
}
