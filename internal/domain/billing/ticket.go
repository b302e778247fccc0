package billing

import (
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketEstado is the lifecycle state of a maintenance-fee ticket
type TicketEstado string

const (
	TicketPendiente TicketEstado = "PENDIENTE"
	TicketFacturado TicketEstado = "FACTURADO"
	TicketCobrado   TicketEstado = "COBRADO"
	TicketAnulado   TicketEstado = "ANULADO"
)

// DescuentoTipo identifies the discount applied to a ticket
type DescuentoTipo string

const (
	DescuentoNone        DescuentoTipo = "NONE"
	DescuentoPensionista DescuentoTipo = "PENSIONISTA"
)

// TasaMantenimientoTicket is an annual maintenance-fee charge on a concession
// contract. One ticket per contract and year.
type TasaMantenimientoTicket struct {
	shared.TenantAggregateRoot
	ContratoID    uuid.UUID
	InvoiceID     *uuid.UUID
	Anio          int
	Importe       decimal.Decimal
	DescuentoTipo DescuentoTipo
	Estado        TicketEstado
}

// NewTicket creates a PENDIENTE ticket for a contract and year
func NewTicket(tenantID, contratoID uuid.UUID, anio int, importe decimal.Decimal, descuento DescuentoTipo) (*TasaMantenimientoTicket, error) {
	if anio < 1900 {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid ticket year")
	}
	if importe.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "ticket amount cannot be negative")
	}
	return &TasaMantenimientoTicket{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContratoID:          contratoID,
		Anio:                anio,
		Importe:             importe.Round(2),
		DescuentoTipo:       descuento,
		Estado:              TicketPendiente,
	}, nil
}

// IsCollectable reports whether the ticket still counts as outstanding debt
func (t *TasaMantenimientoTicket) IsCollectable() bool {
	return t.Estado == TicketPendiente || t.Estado == TicketFacturado
}

// MarkCobrado settles the ticket against an invoice with a final amount
func (t *TasaMantenimientoTicket) MarkCobrado(invoiceID uuid.UUID, finalAmount decimal.Decimal, descuento DescuentoTipo) error {
	if !t.IsCollectable() {
		return shared.NewDomainError("INVALID_STATE", "ticket is not collectable")
	}
	t.InvoiceID = &invoiceID
	t.Importe = finalAmount.Round(2)
	t.DescuentoTipo = descuento
	t.Estado = TicketCobrado
	t.AddDomainEvent(NewTicketCobradoEvent(t))
	return nil
}

// Anular voids a pending ticket
func (t *TasaMantenimientoTicket) Anular() error {
	if t.Estado == TicketCobrado {
		return shared.NewDomainError("INVALID_STATE", "collected tickets cannot be voided")
	}
	t.Estado = TicketAnulado
	return nil
}

// ApplyDiscount returns amount reduced by pct percent, rounded to cents
func ApplyDiscount(amount, pct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return amount.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
}

// ValidateOldestPrefixSelection enforces the oldest-first collection rule:
// the selected tickets must be exactly the oldest prefix (by year) of the
// outstanding tickets. Collecting 2025 while 2024 is unpaid is not allowed,
// nor is skipping a year in the middle.
func ValidateOldestPrefixSelection(outstanding []TasaMantenimientoTicket, selectedIDs []uuid.UUID) error {
	if len(selectedIDs) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "no tickets selected")
	}
	if len(selectedIDs) > len(outstanding) {
		return shared.NewDomainError("INVALID_INPUT", "selection exceeds outstanding tickets")
	}
	selected := make(map[uuid.UUID]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}
	if len(selected) != len(selectedIDs) {
		return shared.NewDomainError("INVALID_INPUT", "duplicate tickets in selection")
	}
	for i := 0; i < len(selectedIDs); i++ {
		if !selected[outstanding[i].ID] {
			return shared.NewDomainError("INVALID_INPUT", "tickets must be collected oldest first, without gaps")
		}
	}
	return nil
}
