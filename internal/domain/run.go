package domain

import "fmt"

// UserProfile carries optional caller context embedded in the system prompt.
type UserProfile struct {
	Name string
	Age  int
}

// RunInput is the single entry point's argument. Messages is the
// conversation so far; the orchestrator never mutates it.
type RunInput struct {
	Messages   []Message
	User       *UserProfile
	Date       string
	CutoffDate string
}

// RunHooks are the caller-supplied lifecycle callbacks for one run.
// OnAgentFailed and OnFinish are required: OnFinish is the only path by
// which a caller receives the terminal result, and OnAgentFailed reports
// fail-fast aborts. The remaining hooks are optional.
type RunHooks struct {
	// OnChooseAgents reports the tool-selection decision, on both the
	// direct-answer and pipeline branches.
	OnChooseAgents func(reasoning string, tools []string)
	// OnUsingAgent fires before an agent executes.
	OnUsingAgent func(name string)
	// OnAgentFinished fires after an agent completes. A nil result means
	// the agent found nothing usable in its input.
	OnAgentFinished func(name string, result any)
	// OnAgentFailed fires when an agent exhausts its retries; the run is
	// aborted and OnFinish is never called.
	OnAgentFailed func(name string, errMsg string)
	// OnFinish delivers the terminal result, exactly once per
	// successful run.
	OnFinish func(result *FinalResult)
}

// Validate checks that the required hooks are present.
func (h RunHooks) Validate() error {
	if h.OnFinish == nil {
		return fmt.Errorf("run hooks: %w: OnFinish is required", ErrInvalidInput)
	}
	if h.OnAgentFailed == nil {
		return fmt.Errorf("run hooks: %w: OnAgentFailed is required", ErrInvalidInput)
	}
	return nil
}
