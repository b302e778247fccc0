package billing

import (
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the billing module
const (
	EventTicketCobrado = "billing.ticket.cobrado"
)

// TicketCobradoEvent is emitted when a ticket is collected. Its handler
// writes the TASAS movement on the grave ledger.
type TicketCobradoEvent struct {
	shared.BaseDomainEvent
	ContratoID uuid.UUID       `json:"contrato_id"`
	Anio       int             `json:"anio"`
	Importe    decimal.Decimal `json:"importe"`
}

// NewTicketCobradoEvent creates the collection event
func NewTicketCobradoEvent(t *TasaMantenimientoTicket) *TicketCobradoEvent {
	return &TicketCobradoEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTicketCobrado, "TasaMantenimientoTicket", t.ID, t.TenantID),
		ContratoID:      t.ContratoID,
		Anio:            t.Anio,
		Importe:         t.Importe,
	}
}
