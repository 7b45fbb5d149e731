package service

import (
	"testing"

	"github.com/dfarias/chaperone/internal/domain"
)

func TestAgentRegistry_RegisterAndLookup(t *testing.T) {
	r := NewAgentRegistry()
	r.Register("conversational", []domain.AgentCapability{
		{Name: "negotiate", Description: "negotiate shift terms"},
	})

	caps, ok := r.Lookup("conversational")
	if !ok {
		t.Fatal("registered agent not found")
	}
	if len(caps) != 1 || caps[0].Name != "negotiate" {
		t.Fatalf("unexpected capabilities: %+v", caps)
	}

	if _, ok := r.Lookup("billing"); ok {
		t.Fatal("unregistered agent found")
	}
}

func TestAgentRegistry_LookupReturnsCopy(t *testing.T) {
	r := NewAgentRegistry()
	r.Register("scheduler", []domain.AgentCapability{{Name: "book"}})

	caps, _ := r.Lookup("scheduler")
	caps[0].Name = "mutated"

	fresh, _ := r.Lookup("scheduler")
	if fresh[0].Name != "book" {
		t.Fatalf("registry state mutated through lookup result: %+v", fresh)
	}
}

func TestAgentRegistry_ReRegisterReplaces(t *testing.T) {
	r := NewAgentRegistry()
	r.Register("scheduler", []domain.AgentCapability{{Name: "book"}})
	r.Register("scheduler", []domain.AgentCapability{{Name: "book"}, {Name: "cancel"}})

	caps, _ := r.Lookup("scheduler")
	if len(caps) != 2 {
		t.Fatalf("re-registration did not replace capabilities: %+v", caps)
	}
}
