package testutil

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/event"
)

// CaptureHandler records every domain event it receives.
type CaptureHandler struct {
	mu      sync.Mutex
	handled []shared.DomainEvent
}

// NewCaptureHandler creates a capture handler subscribed to all events.
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{}
}

// EventTypes returns nil so the handler receives every event.
func (h *CaptureHandler) EventTypes() []string { return nil }

// Handle records the event.
func (h *CaptureHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev)
	return nil
}

// Handled returns a copy of the recorded events.
func (h *CaptureHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledOfType returns the recorded events of one type.
func (h *CaptureHandler) HandledOfType(eventType string) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []shared.DomainEvent
	for _, ev := range h.handled {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// NewCaptureBus creates a synchronous bus with a capture handler attached.
func NewCaptureBus() (*event.InMemoryBus, *CaptureHandler) {
	bus := event.NewInMemoryBus(zap.NewNop())
	capture := NewCaptureHandler()
	bus.Subscribe(capture)
	return bus, capture
}
