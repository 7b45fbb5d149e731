package service

import (
	"sync"

	"github.com/dfarias/chaperone/internal/domain"
)

// AgentRegistry is the in-process implementation of the agent directory.
// Registrations happen at wiring time; lookups happen on every transfer.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string][]domain.AgentCapability
}

func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string][]domain.AgentCapability)}
}

func (r *AgentRegistry) Register(name string, caps []domain.AgentCapability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = append([]domain.AgentCapability(nil), caps...)
}

func (r *AgentRegistry) Lookup(name string) ([]domain.AgentCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.agents[name]
	if !ok {
		return nil, false
	}
	return append([]domain.AgentCapability(nil), caps...), true
}

// Names lists registered agents in no particular order.
func (r *AgentRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}
