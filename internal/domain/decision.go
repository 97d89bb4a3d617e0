package domain

// Decision is the outcome of the tool-selection reasoning call.
// It is produced once per run and never mutated afterward.
type Decision struct {
	// Reasoning is the model's narrative for its tool choice.
	Reasoning string
	// Tools is the ordered list of agent names to execute. Order is
	// execution order. Never empty: an empty tools container parses to
	// the single-element list [NoTool].
	Tools []string
	// Message is the optional direct answer for the no-tool path.
	Message string
}

// IsDirect reports whether the decision asks for a direct answer
// instead of an agent pipeline.
func (d Decision) IsDirect() bool {
	if len(d.Tools) == 0 {
		return true
	}
	for _, t := range d.Tools {
		if t == NoTool {
			return true
		}
	}
	return false
}
