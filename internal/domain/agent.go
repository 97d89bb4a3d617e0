package domain

import "context"

// ViewType tags how an agent's result is meant to be rendered.
type ViewType string

const (
	// ViewText marks prose output.
	ViewText ViewType = "text"
	// ViewData marks structured output for custom rendering.
	ViewData ViewType = "view"
)

// NoTool is the reserved tool name meaning "answer directly, no agent needed".
const NoTool = "no-tool"

// ModelCaller is the completion capability handed to an agent during OnCall.
// The executor supplies call-specific policy (model selection, retries)
// behind this indirection, so agents never touch a concrete client.
type ModelCaller interface {
	Create(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ModelCallerFunc adapts a function to the ModelCaller interface.
type ModelCallerFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

// Create implements ModelCaller.
func (f ModelCallerFunc) Create(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return f(ctx, req)
}

// AgentOutput is what an agent produces from one invocation. Result is the
// agent's domain result; Data is an optional auxiliary payload surfaced in
// the final response (e.g., chart data for custom rendering). Returning the
// auxiliary payload here, instead of stashing it on the agent instance,
// keeps shared agent instances safe under concurrent runs.
type AgentOutput struct {
	Result any
	Data   any
}

// ToolAgent is the capability contract every tool must satisfy.
//
// OnCall receives the model's attempt at producing the CallFormat shape.
// Unusable input (malformed JSON, missing required fields) returns
// (nil, nil) — "skip, nothing useful produced". Genuinely exceptional
// conditions (network failure, missing configuration) return an error and
// are subject to the executor's retry policy.
type ToolAgent interface {
	// Name uniquely identifies the agent within a run's agent set.
	Name() string
	// Description is presented verbatim to the reasoning model.
	Description() string
	// Keywords are optional ranking hints for tool selection.
	Keywords() []string
	// ViewType tags whether the result is prose or structured data.
	ViewType() ViewType
	// NeedSimplify reports whether the final result should be rewritten
	// for a general audience when this agent terminates the pipeline.
	NeedSimplify() bool
	// CallFormat returns a literal template of the exact textual/JSON
	// shape the agent expects to receive from a model completion.
	CallFormat() string
	// OnCall parses raw model text and performs the agent's actual work.
	OnCall(ctx context.Context, raw string, ai ModelCaller) (*AgentOutput, error)
}
