package operations

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrdenTrabajoEstado is the work-order state
type OrdenTrabajoEstado string

const (
	OrdenPendiente  OrdenTrabajoEstado = "PENDIENTE"
	OrdenCompletada OrdenTrabajoEstado = "COMPLETADA"
)

// OrdenTrabajo is a work order raised under an expediente
type OrdenTrabajo struct {
	shared.TenantAggregateRoot
	ExpedienteID uuid.UUID
	Descripcion  string
	Estado       OrdenTrabajoEstado
	CompletedAt  *time.Time
}

// NewOrdenTrabajo creates a PENDIENTE work order
func NewOrdenTrabajo(tenantID, expedienteID uuid.UUID, descripcion string) (*OrdenTrabajo, error) {
	if descripcion == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "work order description is required")
	}
	return &OrdenTrabajo{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExpedienteID:        expedienteID,
		Descripcion:         descripcion,
		Estado:              OrdenPendiente,
	}, nil
}

// Complete finishes the work order. Completing an already completed order is
// a no-op.
func (o *OrdenTrabajo) Complete() {
	if o.Estado == OrdenCompletada {
		return
	}
	now := time.Now().UTC()
	o.Estado = OrdenCompletada
	o.CompletedAt = &now
}
