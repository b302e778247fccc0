package operations

import (
	"context"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpedienteRepository persists dossiers
type ExpedienteRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expediente, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Expediente], error)
	CountNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
	Save(ctx context.Context, expediente *Expediente) error
}

// OrdenTrabajoRepository persists work orders
type OrdenTrabajoRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*OrdenTrabajo, error)
	FindByExpediente(ctx context.Context, tenantID, expedienteID uuid.UUID) ([]OrdenTrabajo, error)
	Save(ctx context.Context, orden *OrdenTrabajo) error
}

// LapidaStockRepository persists gravestone inventory and its ledger
type LapidaStockRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LapidaStock, error)
	FindByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*LapidaStock, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]LapidaStock, error)
	Save(ctx context.Context, stock *LapidaStock) error
	AppendMovimiento(ctx context.Context, mov *LapidaStockMovimiento) error
	FindMovimientos(ctx context.Context, tenantID, stockID uuid.UUID) ([]LapidaStockMovimiento, error)
}

// InscripcionRepository persists lateral inscriptions
type InscripcionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InscripcionLateral, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[InscripcionLateral], error)
	Save(ctx context.Context, inscripcion *InscripcionLateral) error
}
