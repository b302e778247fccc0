package contract

import (
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the contract module
const (
	EventContratoActivated = "contract.contrato.activated"
)

// ContratoActivatedEvent is emitted when a funeral-right contract is created.
// Its handler occupies the grave and writes the CONTRATO movement.
type ContratoActivatedEvent struct {
	shared.BaseDomainEvent
	SepulturaID uuid.UUID   `json:"sepultura_id"`
	Tipo        DerechoTipo `json:"tipo"`
}

// NewContratoActivatedEvent creates the activation event
func NewContratoActivatedEvent(c *DerechoFunerarioContrato) *ContratoActivatedEvent {
	return &ContratoActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContratoActivated, "DerechoFunerarioContrato", c.ID, c.TenantID),
		SepulturaID:     c.SepulturaID,
		Tipo:            c.Tipo,
	}
}
