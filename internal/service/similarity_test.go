package service

import "testing"

func TestSimilarity_Identical(t *testing.T) {
	if got := Similarity("same text", "same text"); got != 1 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "let me check the Saturday shift for you"
	b := "checking on that shift now, one sec"
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("similarity is not symmetric: %v vs %v", Similarity(a, b), Similarity(b, a))
	}
}

func TestSimilarity_Unrelated(t *testing.T) {
	got := Similarity("the shift pays R$ 2.500", "are you free tomorrow morning")
	if got >= 0.8 {
		t.Fatalf("unrelated texts scored %v, expected below threshold", got)
	}
}

func TestSimilarity_StallingParaphrases(t *testing.T) {
	// The verb rotations agents use when stalling must score as duplicates.
	phrases := []string{
		"I'll verify with the team",
		"Let me check with the team here",
		"I am going to confirm with the team",
	}
	for i := 0; i < len(phrases); i++ {
		for j := i + 1; j < len(phrases); j++ {
			if got := Similarity(phrases[i], phrases[j]); got < 0.8 {
				t.Fatalf("Similarity(%q, %q) = %v, expected >= 0.8", phrases[i], phrases[j], got)
			}
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"I'll verify with the team", "let me check with the team"},
		{"Let me check with the team here!", "let me check with the team"},
		{"  Gonna confirm that. ", "going to check that"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canonicalize(tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
