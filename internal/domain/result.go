package domain

// AgentUsage summarizes one agent's outcome within a run. When the same
// agent name appears twice in a tool sequence, the later execution
// overwrites the earlier record (last-write-wins); the summary keeps the
// name's first-execution position.
type AgentUsage struct {
	Name        string  `json:"name"`
	Result      any     `json:"result"`
	UsedSeconds float64 `json:"usedSeconds"`
	Data        any     `json:"data,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// FinalResult is the single terminal artifact of a run, delivered
// exclusively through RunHooks.OnFinish. Immutable once constructed.
type FinalResult struct {
	// Type is the terminating agent's view type (ViewText for the
	// direct-answer path).
	Type ViewType `json:"type"`
	// Text is the final textual output, when there is one.
	Text string `json:"text,omitempty"`
	// Data is the terminating agent's auxiliary payload, when set.
	Data any `json:"data,omitempty"`
	// UsedAgents records every executed agent's outcome in
	// first-execution order. Empty for the direct-answer path.
	UsedAgents []AgentUsage `json:"usedAgents"`
	// AgentMessages is the synthetic conversation transcript produced
	// while chaining agents, for callers that persist context.
	AgentMessages []Message `json:"agentMessages,omitempty"`
}
