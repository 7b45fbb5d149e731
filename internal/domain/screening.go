package domain

import "github.com/google/uuid"

// LoopResult is the outcome of checking a candidate reply against the
// conversation's recent agent utterances.
type LoopResult struct {
	InLoop        bool    `json:"in_loop"`
	SimilarCount  int     `json:"similar_count"`
	MaxSimilarity float64 `json:"max_similarity"`
	MustIntervene bool    `json:"must_intervene"`
	Action        string  `json:"action"`
}

type ConfrontationType string

const (
	ConfrontationVeracity    ConfrontationType = "veracity"
	ConfrontationBotIdentity ConfrontationType = "bot_identity"
)

// EscalationLevel is the severity tier reached after repeated confrontational
// messages. Level 3 always hands off to a human.
type EscalationLevel int

const (
	LevelNone EscalationLevel = 0
	Level1    EscalationLevel = 1
	Level2    EscalationLevel = 2
	Level3    EscalationLevel = 3
)

type ConfrontationResult struct {
	HasConfrontation bool              `json:"has_confrontation"`
	Type             ConfrontationType `json:"type,omitempty"`
	Level            EscalationLevel   `json:"level"`
	MatchedPattern   string            `json:"matched_pattern,omitempty"`
	SuggestedPhrase  string            `json:"suggested_phrase,omitempty"`
	MustEscalate     bool              `json:"must_escalate"`
}

type ContradictionKind string

const (
	ContradictionValue  ContradictionKind = "value"
	ContradictionEntity ContradictionKind = "entity"
)

type ContradictionResult struct {
	HasContradiction  bool              `json:"has_contradiction"`
	Kind              ContradictionKind `json:"kind,omitempty"`
	PreviousValue     string            `json:"previous_value,omitempty"`
	NewValue          string            `json:"new_value,omitempty"`
	RecommendedAction string            `json:"recommended_action,omitempty"`
}

// UncertaintyFactors are the five weighted signals behind a confidence score.
// Each factor is in [0,1].
type UncertaintyFactors struct {
	ShiftConfidence     float64 `json:"shift_confidence"`
	FacilityConfidence  float64 `json:"facility_confidence"`
	ProfileCompleteness float64 `json:"profile_completeness"`
	MemorySimilarity    float64 `json:"memory_similarity"`
	Confrontation       float64 `json:"confrontation"`
}

type UncertaintyLevel string

const (
	UncertaintyNone     UncertaintyLevel = "none"
	UncertaintyLow      UncertaintyLevel = "low"
	UncertaintyModerate UncertaintyLevel = "moderate"
	UncertaintyHigh     UncertaintyLevel = "high"
)

type UncertaintyResult struct {
	Confidence                 float64            `json:"confidence"`
	MustCommunicateUncertainty bool               `json:"must_communicate_uncertainty"`
	Level                      UncertaintyLevel   `json:"level"`
	Factors                    UncertaintyFactors `json:"factors"`
	SuggestedPhrase            string             `json:"suggested_phrase,omitempty"`
}

// Severity classifies persona-compliance problems. A critical problem makes
// the reply invalid regardless of its numeric score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

type ComplianceCategory string

const (
	ProblemListFormat       ComplianceCategory = "list_format"
	ProblemAutomationReveal ComplianceCategory = "automation_reveal"
	ProblemFormalTone       ComplianceCategory = "formal_tone"
	ProblemTooLong          ComplianceCategory = "too_long"
	ProblemNoInformalMarker ComplianceCategory = "no_informal_marker"
)

type ComplianceProblem struct {
	Category ComplianceCategory `json:"category"`
	Severity Severity           `json:"severity"`
	Detail   string             `json:"detail"`
	Penalty  float64            `json:"penalty"`
}

type ComplianceResult struct {
	Valid        bool                `json:"valid"`
	Score        float64             `json:"score"`
	Problems     []ComplianceProblem `json:"problems,omitempty"`
	SuggestedFix string              `json:"suggested_fix,omitempty"`
}

// InboundDecision is the gate's ruling on a counterparty message.
type InboundDecision struct {
	PolicyDecisionID uuid.UUID           `json:"policy_decision_id"`
	Confrontation    ConfrontationResult `json:"confrontation"`
	Uncertainty      UncertaintyResult   `json:"uncertainty"`
	Escalated        bool                `json:"escalated"`
	HandoffID        *uuid.UUID          `json:"handoff_id,omitempty"`
	MayAgentReply    bool                `json:"may_agent_reply"`
}

type OutboundAction string

const (
	ActionSend       OutboundAction = "send"
	ActionRegenerate OutboundAction = "regenerate"
	ActionEscalate   OutboundAction = "escalate"
	ActionHold       OutboundAction = "hold"
)

// OutboundVerdict is the gate's ruling on a candidate agent reply.
type OutboundVerdict struct {
	PolicyDecisionID uuid.UUID           `json:"policy_decision_id"`
	Action           OutboundAction      `json:"action"`
	Compliance       ComplianceResult    `json:"compliance"`
	Contradiction    ContradictionResult `json:"contradiction"`
	Loop             LoopResult          `json:"loop"`
	Reasons          []string            `json:"reasons,omitempty"`
	HandoffID        *uuid.UUID          `json:"handoff_id,omitempty"`
}
