package contract

import (
	"fmt"
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DerechoTipo is the legal type of a funeral right
type DerechoTipo string

const (
	// DerechoConcesion is a long-term concession (up to 50 years)
	DerechoConcesion DerechoTipo = "CONCESION"
	// DerechoUsoInmediato is an immediate-use right (up to 25 years)
	DerechoUsoInmediato DerechoTipo = "USO_INMEDIATO"
	// DerechoArrendamiento is a rental right
	DerechoArrendamiento DerechoTipo = "ARRENDAMIENTO"
)

// IsValid checks if the type is a known value
func (t DerechoTipo) IsValid() bool {
	switch t {
	case DerechoConcesion, DerechoUsoInmediato, DerechoArrendamiento:
		return true
	}
	return false
}

// ContratoEstado is the lifecycle state of a contract
type ContratoEstado string

const (
	ContratoActivo     ContratoEstado = "ACTIVO"
	ContratoExtinguido ContratoEstado = "EXTINGUIDO"
)

// MaxDurationYears returns the legal duration cap for a contract.
// Pre-reform concessions flagged legacy99 keep their 99-year term.
func MaxDurationYears(tipo DerechoTipo, legacy99 bool) int {
	if tipo == DerechoUsoInmediato {
		return 25
	}
	if legacy99 {
		return 99
	}
	return 50
}

// DerechoFunerarioContrato is a funeral-right contract over a grave
type DerechoFunerarioContrato struct {
	shared.TenantAggregateRoot
	SepulturaID     uuid.UUID
	Tipo            DerechoTipo
	FechaInicio     time.Time
	FechaFin        time.Time
	Legacy99Years   bool
	AnnualFeeAmount decimal.Decimal
	Estado          ContratoEstado
}

// NewDerechoFunerarioContrato creates a contract, enforcing the duration cap
func NewDerechoFunerarioContrato(tenantID, sepulturaID uuid.UUID, tipo DerechoTipo, fechaInicio, fechaFin time.Time, legacy99 bool, annualFee decimal.Decimal) (*DerechoFunerarioContrato, error) {
	if !tipo.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid contract type")
	}
	if !fechaFin.After(fechaInicio) {
		return nil, shared.NewDomainError("INVALID_INPUT", "end date must be after start date")
	}
	if annualFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "annual fee cannot be negative")
	}
	maxYears := MaxDurationYears(tipo, legacy99)
	if fechaFin.After(shared.AddYears(fechaInicio, maxYears)) {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("contract duration exceeds the %d-year legal cap for %s", maxYears, tipo))
	}
	c := &DerechoFunerarioContrato{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SepulturaID:         sepulturaID,
		Tipo:                tipo,
		FechaInicio:         shared.DateOnly(fechaInicio),
		FechaFin:            shared.DateOnly(fechaFin),
		Legacy99Years:       legacy99,
		AnnualFeeAmount:     annualFee,
		Estado:              ContratoActivo,
	}
	c.AddDomainEvent(NewContratoActivatedEvent(c))
	return c, nil
}

// CoversDate reports whether the contract term includes the given date
func (c *DerechoFunerarioContrato) CoversDate(d time.Time) bool {
	d = shared.DateOnly(d)
	return !d.Before(c.FechaInicio) && !d.After(c.FechaFin)
}

// IsActive reports whether the contract is in force
func (c *DerechoFunerarioContrato) IsActive() bool {
	return c.Estado == ContratoActivo
}

// Extinguish ends the contract
func (c *DerechoFunerarioContrato) Extinguish() error {
	if c.Estado == ContratoExtinguido {
		return shared.NewDomainError("INVALID_STATE", "contract is already extinguished")
	}
	c.Estado = ContratoExtinguido
	return nil
}
