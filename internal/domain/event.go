package domain

import (
	"context"
	"time"
)

// EventType identifies a run lifecycle event.
type EventType string

const (
	EventRunStarted    EventType = "run.started"
	EventAgentsChosen  EventType = "run.agents_chosen"
	EventAgentStarted  EventType = "agent.started"
	EventAgentFinished EventType = "agent.finished"
	EventAgentFailed   EventType = "agent.failed"
	EventRunFinished   EventType = "run.finished"
	EventRunFailed     EventType = "run.failed"
)

// Event is a run lifecycle notification published on the bus, alongside
// the direct hook callbacks.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHandler processes a single event.
type EventHandler func(ctx context.Context, event Event)

// EventBus publishes run lifecycle events to subscribers.
type EventBus interface {
	Publish(ctx context.Context, event Event)
}

// AgentsChosenPayload accompanies EventAgentsChosen.
type AgentsChosenPayload struct {
	Reasoning string   `json:"reasoning"`
	Tools     []string `json:"tools"`
}

// AgentFinishedPayload accompanies EventAgentFinished.
type AgentFinishedPayload struct {
	Name        string  `json:"name"`
	UsedSeconds float64 `json:"used_seconds"`
}

// AgentFailedPayload accompanies EventAgentFailed.
type AgentFailedPayload struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}
