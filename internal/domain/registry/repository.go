package registry

import (
	"context"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SepulturaSearchFilter narrows grave searches
type SepulturaSearchFilter struct {
	CemeteryID *uuid.UUID
	Bloque     string
	Estado     SepulturaEstado
	Numero     *int
	HolderName string
	Page       int
	PageSize   int
}

// SepulturaWithDebt pairs a grave with its outstanding maintenance debt
// (sum of tickets not yet collected).
type SepulturaWithDebt struct {
	Sepultura Sepultura
	Debt      decimal.Decimal
}

// CemeteryRepository persists cemeteries
type CemeteryRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Cemetery, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]Cemetery, error)
	Save(ctx context.Context, cemetery *Cemetery) error
}

// SepulturaRepository persists graves
type SepulturaRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sepultura, error)
	FindByLocation(ctx context.Context, tenantID, cemeteryID uuid.UUID, bloque string, fila, columna, numero int) (*Sepultura, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter SepulturaSearchFilter) (shared.Paginated[SepulturaWithDebt], error)
	ExistingLocations(ctx context.Context, tenantID, cemeteryID uuid.UUID, bloque string) (map[string]bool, error)
	Save(ctx context.Context, sepultura *Sepultura) error
	SaveBatch(ctx context.Context, sepulturas []*Sepultura) error
	CountByEstado(ctx context.Context, tenantID uuid.UUID) (map[SepulturaEstado]int64, error)
}

// PersonRepository persists party records
type PersonRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Person, error)
	FindByDniNif(ctx context.Context, tenantID uuid.UUID, dniNif string) (*Person, error)
	SearchByName(ctx context.Context, tenantID uuid.UUID, name string, filter shared.Filter) (shared.Paginated[Person], error)
	Save(ctx context.Context, person *Person) error
}

// MovimientoRepository persists the append-only grave ledger
type MovimientoRepository interface {
	Append(ctx context.Context, movimiento *MovimientoSepultura) error
	FindBySepultura(ctx context.Context, tenantID, sepulturaID uuid.UUID) ([]MovimientoSepultura, error)
}
