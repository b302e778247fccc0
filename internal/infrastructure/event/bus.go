package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/shared"
)

// InMemoryBus is a synchronous in-process event bus. Handlers run in the
// publishing goroutine; a handler error is logged but does not abort the
// remaining handlers.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	all      []shared.EventHandler
	log      *zap.Logger
}

// NewInMemoryBus creates an event bus
func NewInMemoryBus(log *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]shared.EventHandler),
		log:      log,
	}
}

// Publish dispatches events to subscribed handlers
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ev := range events {
		for _, h := range b.all {
			b.dispatch(ctx, h, ev)
		}
		for _, h := range b.handlers[ev.EventType()] {
			b.dispatch(ctx, h, ev)
		}
	}
	return nil
}

func (b *InMemoryBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) {
	if err := h.Handle(ctx, ev); err != nil {
		b.log.Error("event handler failed",
			zap.String("event_type", ev.EventType()),
			zap.String("aggregate_id", ev.AggregateID().String()),
			zap.Error(err))
	}
}

// Subscribe registers a handler. With no event types the handler receives
// every published event.
func (b *InMemoryBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	if len(eventTypes) == 0 {
		b.all = append(b.all, handler)
		return
	}
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Unsubscribe removes a handler from all subscription lists
func (b *InMemoryBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = removeHandler(b.all, handler)
	for t, hs := range b.handlers {
		b.handlers[t] = removeHandler(hs, handler)
	}
}

func removeHandler(hs []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := hs[:0]
	for _, h := range hs {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

// Start is a no-op for the synchronous bus
func (b *InMemoryBus) Start(ctx context.Context) error { return nil }

// Stop is a no-op for the synchronous bus
func (b *InMemoryBus) Stop(ctx context.Context) error { return nil }
