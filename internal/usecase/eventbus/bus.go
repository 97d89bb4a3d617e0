package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"friday/internal/domain"
)

type subscriber struct {
	id      uint64
	handler domain.EventHandler
}

// Bus is an in-process, goroutine-safe fan-out for run lifecycle events.
// Handlers run in their own goroutines so a slow observer never stalls
// the run that published the event.
type Bus struct {
	mu      sync.RWMutex
	typed   map[domain.EventType][]subscriber
	allSubs []subscriber
	nextID  atomic.Uint64
	logger  *slog.Logger
	wg      sync.WaitGroup
	closed  atomic.Bool
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		typed:  make(map[domain.EventType][]subscriber),
		logger: logger,
	}
}

// Publish fans out an event to matching typed subscribers and to
// all-event subscribers. Panicking handlers are recovered and logged.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	subs := make([]subscriber, 0, len(b.typed[event.Type])+len(b.allSubs))
	subs = append(subs, b.typed[event.Type]...)
	subs = append(subs, b.allSubs...)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.dispatch(ctx, event, sub)
	}
}

func (b *Bus) dispatch(ctx context.Context, event domain.Event, sub subscriber) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("event handler panicked",
					"event", string(event.Type),
					"run_id", event.RunID,
					"panic", r,
				)
			}
		}()
		sub.handler(ctx, event)
	}()
}

// Subscribe registers a handler for one event type and returns an
// unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	sub := subscriber{id: b.nextID.Add(1), handler: handler}

	b.mu.Lock()
	b.typed[eventType] = append(b.typed[eventType], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.typed[eventType]
		for i, s := range subs {
			if s.id == sub.id {
				b.typed[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a handler that receives every event and returns
// an unsubscribe function.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	sub := subscriber{id: b.nextID.Add(1), handler: handler}

	b.mu.Lock()
	b.allSubs = append(b.allSubs, sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.allSubs {
			if s.id == sub.id {
				b.allSubs = append(b.allSubs[:i], b.allSubs[i+1:]...)
				return
			}
		}
	}
}

// Close stops accepting publishes and waits for in-flight handlers.
// Idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.wg.Wait()
}
