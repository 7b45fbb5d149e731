package service

import (
	"strings"
	"testing"

	"github.com/dfarias/chaperone/internal/domain"
)

func TestPersonaService_CleanReply(t *testing.T) {
	s := NewPersonaService()
	result := s.Validate("tem sim! sábado das 7h às 19h, quer que eu garanta pra você?", DefaultPersonaOptions())

	if !result.Valid {
		t.Fatalf("clean reply failed validation: %+v", result)
	}
	if result.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %v", result.Score)
	}
	if len(result.Problems) != 0 {
		t.Fatalf("expected no problems, got %+v", result.Problems)
	}
}

func TestPersonaService_AutomationRevealAlwaysInvalid(t *testing.T) {
	s := NewPersonaService()
	result := s.Validate("As an AI, I cannot confirm that shift!", DefaultPersonaOptions())

	if result.Valid {
		t.Fatal("automation reveal passed validation")
	}
	found := false
	for _, p := range result.Problems {
		if p.Category == domain.ProblemAutomationReveal {
			found = true
			if p.Severity != domain.SeverityCritical {
				t.Fatalf("automation reveal should be critical, got %v", p.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("automation reveal not detected: %+v", result.Problems)
	}
}

func TestPersonaService_ListFormat(t *testing.T) {
	s := NewPersonaService()
	text := "options for the weekend:\n- Saturday day shift\n- Sunday night shift"
	result := s.Validate(text, DefaultPersonaOptions())

	found := false
	for _, p := range result.Problems {
		if p.Category == domain.ProblemListFormat {
			found = true
		}
	}
	if !found {
		t.Fatalf("list format not detected: %+v", result.Problems)
	}
}

func TestPersonaService_FormalToneMinor(t *testing.T) {
	s := NewPersonaService()
	result := s.Validate("Prezado doutor, segue a proposta!", DefaultPersonaOptions())

	found := false
	for _, p := range result.Problems {
		if p.Category == domain.ProblemFormalTone {
			found = true
			if p.Severity != domain.SeverityMinor {
				t.Fatalf("formal tone should be minor, got %v", p.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("formal tone not detected: %+v", result.Problems)
	}
	// A single minor problem keeps the reply sendable.
	if !result.Valid {
		t.Fatalf("single minor problem should not invalidate: %+v", result)
	}
}

func TestPersonaService_TooManyLines(t *testing.T) {
	s := NewPersonaService()
	text := strings.Repeat("another line about the shift!\n", 7) + "last one"
	result := s.Validate(text, DefaultPersonaOptions())

	found := false
	for _, p := range result.Problems {
		if p.Category == domain.ProblemTooLong {
			found = true
		}
	}
	if !found {
		t.Fatalf("overlong reply not detected: %+v", result.Problems)
	}
}

func TestPersonaService_MissingInformalMarker(t *testing.T) {
	s := NewPersonaService()
	text := "the Saturday shift runs from seven to nineteen and the rate was already agreed"
	result := s.Validate(text, DefaultPersonaOptions())

	found := false
	for _, p := range result.Problems {
		if p.Category == domain.ProblemNoInformalMarker {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing informal marker not detected: %+v", result.Problems)
	}
	if !result.Valid {
		t.Fatalf("marker nit alone should not invalidate: %+v", result)
	}
}

func TestPersonaService_SuggestedFixPerCategory(t *testing.T) {
	s := NewPersonaService()
	text := "Prezado doutor:\n- opção um\n- opção dois"
	result := s.Validate(text, DefaultPersonaOptions())

	if result.SuggestedFix == "" {
		t.Fatal("expected a suggested fix")
	}
	if !strings.Contains(result.SuggestedFix, ";") {
		t.Fatalf("expected hints for both categories, got %q", result.SuggestedFix)
	}
}
