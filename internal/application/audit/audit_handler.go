package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/shared"
)

// LogHandler writes every published domain event to the structured log,
// giving operators a flat audit stream alongside the per-grave ledger.
type LogHandler struct {
	log *zap.Logger
}

// NewLogHandler creates the handler
func NewLogHandler(log *zap.Logger) *LogHandler {
	return &LogHandler{log: log}
}

// Handle logs the event
func (h *LogHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.log.Info("domain event",
		zap.String("event_type", ev.EventType()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.String("tenant_id", ev.TenantID().String()),
		zap.Time("occurred_at", ev.OccurredAt()))
	return nil
}

// EventTypes subscribes to every event
func (h *LogHandler) EventTypes() []string { return nil }
