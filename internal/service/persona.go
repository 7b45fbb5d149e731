package service

import (
	"regexp"
	"strings"

	"github.com/dfarias/chaperone/internal/domain"
)

// Penalty weights per problem category.
const (
	penaltyListFormat       = 0.3
	penaltyAutomationReveal = 0.5
	penaltyFormalTone       = 0.2
	penaltyPerExtraLine     = 0.15
	penaltyNoInformalMarker = 0.05
)

// A reply passes on score alone only above this threshold, and never with a
// critical problem present.
const complianceScoreThreshold = 0.7

// Replies longer than this are expected to carry at least one informal
// marker; very short ones get a pass.
const informalCheckMinLength = 50

var listMarkerPattern = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s`)

// Phrases that reveal the agent is automated. Always critical: a reply
// containing one of these must never reach the counterparty.
var automationPhrases = []string{
	"i am an ai", "i'm an ai", "as an ai", "language model",
	"i am a bot", "i'm a bot", "i am a robot", "virtual assistant",
	"automated message", "automated system",
	"sou um robô", "sou um rob", "sou uma ia", "assistente virtual",
	"inteligência artificial", "inteligencia artificial",
}

// Phrases too stiff for a chat thread with a physician.
var formalPhrases = []string{
	"dear sir", "dear madam", "to whom it may concern",
	"yours sincerely", "cordially", "we hereby", "kindly be advised",
	"prezado", "prezada", "atenciosamente", "venho por meio desta",
}

// Markers of the casual register the persona is supposed to keep.
var informalMarkers = []string{
	"!", ":)", ":d", "haha", "kkk", "hey", "hi ", "oi ", "opa",
	"beleza", "combinado", "show", "massa", "👍", "😊", "rs",
}

var fixHints = map[domain.ComplianceCategory]string{
	domain.ProblemListFormat:       "rewrite as flowing sentences without list markers",
	domain.ProblemAutomationReveal: "remove any mention of being automated and answer as a colleague would",
	domain.ProblemFormalTone:       "drop the formal openers and keep it conversational",
	domain.ProblemTooLong:          "tighten the reply to a few short lines",
	domain.ProblemNoInformalMarker: "add a touch of warmth so it reads like a person typing",
}

// PersonaOptions tune a single validation call.
type PersonaOptions struct {
	MaxLines         int
	CheckInformality bool
}

func DefaultPersonaOptions() PersonaOptions {
	return PersonaOptions{MaxLines: 4, CheckInformality: true}
}

// PersonaService checks that a candidate reply keeps the required voice:
// short, informal, never list-shaped, and never admitting automation.
// Stateless and never errors.
type PersonaService struct{}

func NewPersonaService() *PersonaService {
	return &PersonaService{}
}

func (s *PersonaService) Validate(text string, opts PersonaOptions) domain.ComplianceResult {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultPersonaOptions().MaxLines
	}

	lower := strings.ToLower(text)
	var problems []domain.ComplianceProblem

	if listMarkerPattern.MatchString(text) {
		problems = append(problems, domain.ComplianceProblem{
			Category: domain.ProblemListFormat,
			Severity: domain.SeverityMajor,
			Detail:   "reply is formatted as a list",
			Penalty:  penaltyListFormat,
		})
	}

	for _, phrase := range automationPhrases {
		if strings.Contains(lower, phrase) {
			problems = append(problems, domain.ComplianceProblem{
				Category: domain.ProblemAutomationReveal,
				Severity: domain.SeverityCritical,
				Detail:   "reply reveals automation: " + strings.TrimSpace(phrase),
				Penalty:  penaltyAutomationReveal,
			})
			break
		}
	}

	for _, phrase := range formalPhrases {
		if strings.Contains(lower, phrase) {
			problems = append(problems, domain.ComplianceProblem{
				Category: domain.ProblemFormalTone,
				Severity: domain.SeverityMinor,
				Detail:   "overly formal phrasing: " + phrase,
				Penalty:  penaltyFormalTone,
			})
			break
		}
	}

	if lines := strings.Count(text, "\n") + 1; lines > opts.MaxLines {
		over := lines - opts.MaxLines
		problems = append(problems, domain.ComplianceProblem{
			Category: domain.ProblemTooLong,
			Severity: domain.SeverityMinor,
			Detail:   "reply spans too many lines",
			Penalty:  penaltyPerExtraLine * float64(over),
		})
	}

	if opts.CheckInformality && len(text) > informalCheckMinLength && !hasInformalMarker(lower) {
		problems = append(problems, domain.ComplianceProblem{
			Category: domain.ProblemNoInformalMarker,
			Severity: domain.SeverityMinor,
			Detail:   "long reply with no informal marker",
			Penalty:  penaltyNoInformalMarker,
		})
	}

	score := 1.0
	critical := false
	for _, p := range problems {
		score -= p.Penalty
		if p.Severity == domain.SeverityCritical {
			critical = true
		}
	}
	score = clamp01(score)

	result := domain.ComplianceResult{
		Score:    score,
		Problems: problems,
	}
	result.Valid = len(problems) == 0 || (score >= complianceScoreThreshold && !critical)
	if len(problems) > 0 {
		result.SuggestedFix = suggestedFix(problems)
	}
	return result
}

func hasInformalMarker(lower string) bool {
	for _, m := range informalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// suggestedFix concatenates one hint per distinct problem category, in the
// order the problems were found.
func suggestedFix(problems []domain.ComplianceProblem) string {
	seen := make(map[domain.ComplianceCategory]struct{}, len(problems))
	var hints []string
	for _, p := range problems {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		hints = append(hints, fixHints[p.Category])
	}
	return strings.Join(hints, "; ")
}
