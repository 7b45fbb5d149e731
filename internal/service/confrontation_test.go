package service

import (
	"testing"

	"github.com/dfarias/chaperone/internal/domain"
)

func TestConfrontationService_NoConfrontation(t *testing.T) {
	s := NewConfrontationService()
	result := s.Detect("is the Saturday shift still open?", 0)
	if result.HasConfrontation {
		t.Fatalf("plain question flagged as confrontation: %+v", result)
	}
}

func TestConfrontationService_FirstVeracityHit(t *testing.T) {
	s := NewConfrontationService()
	result := s.Detect("that's not true, the hospital told me otherwise", 0)

	if !result.HasConfrontation || result.Type != domain.ConfrontationVeracity {
		t.Fatalf("expected veracity confrontation, got %+v", result)
	}
	if result.Level != domain.Level1 {
		t.Fatalf("first confrontation should be level 1, got %v", result.Level)
	}
	if result.MustEscalate {
		t.Fatal("level 1 must not escalate")
	}
	if result.SuggestedPhrase == "" {
		t.Fatal("expected a suggested phrase")
	}
}

func TestConfrontationService_ThirdVeracityHitEscalates(t *testing.T) {
	s := NewConfrontationService()
	// Two confrontations already on record makes this the third.
	result := s.Detect("You people only give wrong information", 2)

	if !result.HasConfrontation || result.Type != domain.ConfrontationVeracity {
		t.Fatalf("expected veracity confrontation, got %+v", result)
	}
	if result.Level != domain.Level3 {
		t.Fatalf("third confrontation should be level 3, got %v", result.Level)
	}
	if !result.MustEscalate {
		t.Fatal("level 3 must escalate")
	}
}

func TestConfrontationService_BotIdentityNeverEscalates(t *testing.T) {
	s := NewConfrontationService()
	for _, count := range []int{0, 2, 10} {
		result := s.Detect("wait, are you a bot?", count)
		if !result.HasConfrontation || result.Type != domain.ConfrontationBotIdentity {
			t.Fatalf("expected bot identity confrontation, got %+v", result)
		}
		if result.Level != domain.Level1 || result.MustEscalate {
			t.Fatalf("bot identity at count %d should stay level 1 without escalation, got %+v", count, result)
		}
	}
}

func TestConfrontationService_Portuguese(t *testing.T) {
	s := NewConfrontationService()
	result := s.Detect("isso não existe, você está me enrolando", 0)
	if !result.HasConfrontation || result.Type != domain.ConfrontationVeracity {
		t.Fatalf("expected veracity confrontation for pt-BR text, got %+v", result)
	}

	result = s.Detect("você é um robô?", 0)
	if !result.HasConfrontation || result.Type != domain.ConfrontationBotIdentity {
		t.Fatalf("expected bot identity confrontation for pt-BR text, got %+v", result)
	}
}

func TestEscalationLevel(t *testing.T) {
	tests := []struct {
		n    int
		want domain.EscalationLevel
	}{
		{0, domain.Level1},
		{1, domain.Level1},
		{2, domain.Level2},
		{3, domain.Level3},
		{7, domain.Level3},
	}
	for _, tt := range tests {
		if got := escalationLevel(tt.n); got != tt.want {
			t.Errorf("escalationLevel(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
