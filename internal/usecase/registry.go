package usecase

import (
	"friday/internal/domain"
)

// Registry holds the tool agents available to a run. Lookup is by name;
// All preserves registration order so prompts and selection stay stable.
type Registry struct {
	byName map[string]domain.ToolAgent
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]domain.ToolAgent)}
}

// Register adds an agent. Registering a second agent under the same name
// is rejected rather than silently replacing the first.
func (r *Registry) Register(agent domain.ToolAgent) error {
	name := agent.Name()
	if name == "" {
		return domain.NewDomainError("registry.register", domain.ErrInvalidInput, "agent name is empty")
	}
	if name == domain.NoTool {
		return domain.NewDomainError("registry.register", domain.ErrInvalidInput, "agent name collides with the no-tool sentinel")
	}
	if _, ok := r.byName[name]; ok {
		return domain.NewDomainError("registry.register", domain.ErrDuplicate, name)
	}
	r.byName[name] = agent
	r.order = append(r.order, name)
	return nil
}

// Get returns the agent registered under name.
func (r *Registry) Get(name string) (domain.ToolAgent, error) {
	agent, ok := r.byName[name]
	if !ok {
		return nil, domain.NewDomainError("registry.get", domain.ErrNotFound, name)
	}
	return agent, nil
}

// All returns the registered agents in registration order.
func (r *Registry) All() []domain.ToolAgent {
	agents := make([]domain.ToolAgent, 0, len(r.order))
	for _, name := range r.order {
		agents = append(agents, r.byName[name])
	}
	return agents
}

// Len reports how many agents are registered.
func (r *Registry) Len() int { return len(r.order) }
