package service

import (
	"math/rand/v2"

	"github.com/dfarias/chaperone/internal/domain"
)

// Factor weights. They sum to 1.0 so the combined confidence stays in [0,1].
const (
	weightShift         = 0.30
	weightFacility      = 0.25
	weightProfile       = 0.20
	weightMemory        = 0.15
	weightConfrontation = 0.10
)

// Defaults for absent optional signals: missing information is neutral, not
// a penalty.
const (
	defaultDataConfidence   = 1.0
	defaultMemorySimilarity = 0.8
	incompleteProfileFactor = 0.5
)

// Below this combined confidence the agent must hedge instead of asserting.
const uncertaintyThreshold = 0.7

var hedgePhrases = []string{
	"let me confirm that and get right back to you",
	"let me check with the team to be sure",
	"I want to double-check that before I promise anything",
	"give me a moment to verify the details",
}

// UncertaintyInput carries the raw signals for one scoring call. Pointer
// fields are optional; nil means the upstream system produced no signal.
type UncertaintyInput struct {
	ShiftConfidence    *float64
	FacilityConfidence *float64
	ProfileComplete    bool
	MemorySimilarity   *float64
	ConfrontationCount int
}

// UncertaintyService combines independent confidence signals into one score
// and decides whether the agent must communicate uncertainty. Stateless and
// never errors.
type UncertaintyService struct{}

func NewUncertaintyService() *UncertaintyService {
	return &UncertaintyService{}
}

func (s *UncertaintyService) Score(in UncertaintyInput) domain.UncertaintyResult {
	factors := domain.UncertaintyFactors{
		ShiftConfidence:     clamp01(orDefault(in.ShiftConfidence, defaultDataConfidence)),
		FacilityConfidence:  clamp01(orDefault(in.FacilityConfidence, defaultDataConfidence)),
		ProfileCompleteness: 1.0,
		MemorySimilarity:    clamp01(orDefault(in.MemorySimilarity, defaultMemorySimilarity)),
		Confrontation:       confrontationFactor(in.ConfrontationCount),
	}
	if !in.ProfileComplete {
		factors.ProfileCompleteness = incompleteProfileFactor
	}

	confidence := factors.ShiftConfidence*weightShift +
		factors.FacilityConfidence*weightFacility +
		factors.ProfileCompleteness*weightProfile +
		factors.MemorySimilarity*weightMemory +
		factors.Confrontation*weightConfrontation

	result := domain.UncertaintyResult{
		Confidence:                 clamp01(confidence),
		MustCommunicateUncertainty: confidence < uncertaintyThreshold,
		Level:                      uncertaintyLevel(confidence),
		Factors:                    factors,
	}
	if result.MustCommunicateUncertainty {
		result.SuggestedPhrase = hedgePhrases[rand.IntN(len(hedgePhrases))]
	}
	return result
}

func confrontationFactor(count int) float64 {
	switch {
	case count <= 0:
		return 1.0
	case count == 1:
		return 0.8
	default:
		return 0.5
	}
}

func uncertaintyLevel(confidence float64) domain.UncertaintyLevel {
	switch {
	case confidence >= 0.7:
		return domain.UncertaintyNone
	case confidence >= 0.5:
		return domain.UncertaintyLow
	case confidence >= 0.3:
		return domain.UncertaintyModerate
	default:
		return domain.UncertaintyHigh
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
