package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
)

// SepulturaService manages grave inventory: search, manual state changes,
// mass creation and the per-grave ledger.
type SepulturaService struct {
	db    *persistence.Database
	repos *persistence.Repositories
	log   *zap.Logger
}

// NewSepulturaService creates the service
func NewSepulturaService(db *persistence.Database, repos *persistence.Repositories, log *zap.Logger) *SepulturaService {
	return &SepulturaService{db: db, repos: repos, log: log}
}

// CreateSepulturaInput creates one grave unit
type CreateSepulturaInput struct {
	CemeteryID  uuid.UUID
	Bloque      string
	Fila        int
	Columna     int
	Numero      int
	Via         string
	Modalidad   string
	Estado      string
	TipoBloque  string
	TipoLapida  string
	Orientacion string
}

// CreateSepultura registers a single grave
func (s *SepulturaService) CreateSepultura(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateSepulturaInput) (*registry.Sepultura, error) {
	estado := registry.SepulturaEstado(input.Estado)
	if input.Estado == "" {
		estado = registry.EstadoLliure
	}
	if estado == registry.EstadoOcupada {
		return nil, shared.NewDomainError("INVALID_INPUT", "OCUPADA is only set by contract activation")
	}

	// One grave per grid cell, whatever its numero.
	taken, err := s.repos.Sepulturas.ExistingLocations(ctx, tenantID, input.CemeteryID, input.Bloque)
	if err != nil {
		return nil, err
	}
	if taken[fmt.Sprintf("%d:%d", input.Fila, input.Columna)] {
		return nil, shared.ErrAlreadyExists
	}

	sep, err := registry.NewSepultura(tenantID, input.CemeteryID, input.Bloque, input.Fila, input.Columna, input.Numero, estado)
	if err != nil {
		return nil, err
	}
	sep.Via = input.Via
	sep.Modalidad = input.Modalidad
	sep.TipoBloque = input.TipoBloque
	sep.TipoLapida = input.TipoLapida
	sep.Orientacion = input.Orientacion
	if userID != nil {
		sep.SetCreatedBy(*userID)
	}
	if err := s.repos.Sepulturas.Save(ctx, sep); err != nil {
		return nil, err
	}
	return sep, nil
}

// GetSepultura loads a grave
func (s *SepulturaService) GetSepultura(ctx context.Context, tenantID, id uuid.UUID) (*registry.Sepultura, error) {
	return s.repos.Sepulturas.FindByID(ctx, tenantID, id)
}

// Search lists graves with their outstanding debt
func (s *SepulturaService) Search(ctx context.Context, tenantID uuid.UUID, filter registry.SepulturaSearchFilter) (shared.Paginated[registry.SepulturaWithDebt], error) {
	return s.repos.Sepulturas.Search(ctx, tenantID, filter)
}

// ChangeEstado applies a manual grave state change and records it on the
// ledger. OCUPADA is never reachable from here.
func (s *SepulturaService) ChangeEstado(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, sepulturaID uuid.UUID, newEstado string) (*registry.Sepultura, error) {
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, sepulturaID)
	if err != nil {
		return nil, err
	}
	old := sep.Estado
	if err := sep.ChangeEstado(registry.SepulturaEstado(newEstado)); err != nil {
		return nil, err
	}
	if sep.Estado == old {
		return sep, nil
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Sepulturas.Save(ctx, sep); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, sep.ID, registry.MovimientoCambioEstado,
			fmt.Sprintf("%s -> %s", old, sep.Estado), userID))
	})
	if err != nil {
		return nil, err
	}
	return sep, nil
}

// MassCreateInput creates a rectangular block of graves
type MassCreateInput struct {
	CemeteryID  uuid.UUID
	Bloque      string
	FilaFrom    int
	FilaTo      int
	ColumnaFrom int
	ColumnaTo   int
	NumeroStart int
	Via         string
	Modalidad   string
	TipoBloque  string
	TipoLapida  string
	Orientacion string
}

// MassCreatePreview is the dry-run result of a mass creation. Sample holds
// the first rows of the grid so the operator can eyeball the numbering.
type MassCreatePreview struct {
	ToCreate int                `json:"to_create"`
	Skipped  int                `json:"skipped"`
	Sample   []MassCreateSample `json:"sample,omitempty"`
}

// MassCreateSample is one previewed grid cell
type MassCreateSample struct {
	Fila    int  `json:"fila"`
	Columna int  `json:"columna"`
	Numero  int  `json:"numero"`
	Exists  bool `json:"exists"`
}

const massCreateSampleSize = 15

func (input MassCreateInput) validate() error {
	if input.Bloque == "" {
		return shared.NewDomainError("INVALID_INPUT", "bloque is required")
	}
	if input.FilaFrom < 1 || input.ColumnaFrom < 1 || input.FilaTo < input.FilaFrom || input.ColumnaTo < input.ColumnaFrom {
		return shared.NewDomainError("INVALID_INPUT", "invalid grid range")
	}
	return nil
}

// numeroFor computes the sequential grave number of a grid position
func (input MassCreateInput) numeroFor(fila, columna int) int {
	width := input.ColumnaTo - input.ColumnaFrom + 1
	offset := (fila-input.FilaFrom)*width + (columna - input.ColumnaFrom)
	return input.NumeroStart + offset
}

// PreviewMassCreate reports how many graves would be created and how many
// grid positions are already taken.
func (s *SepulturaService) PreviewMassCreate(ctx context.Context, tenantID uuid.UUID, input MassCreateInput) (*MassCreatePreview, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repos.Sepulturas.ExistingLocations(ctx, tenantID, input.CemeteryID, input.Bloque)
	if err != nil {
		return nil, err
	}
	preview := &MassCreatePreview{}
	for fila := input.FilaFrom; fila <= input.FilaTo; fila++ {
		for col := input.ColumnaFrom; col <= input.ColumnaTo; col++ {
			taken := existing[fmt.Sprintf("%d:%d", fila, col)]
			if taken {
				preview.Skipped++
			} else {
				preview.ToCreate++
			}
			if len(preview.Sample) < massCreateSampleSize {
				preview.Sample = append(preview.Sample, MassCreateSample{
					Fila:    fila,
					Columna: col,
					Numero:  input.numeroFor(fila, col),
					Exists:  taken,
				})
			}
		}
	}
	return preview, nil
}

// MassCreate creates the grid in LLIURE state, skipping taken positions
func (s *SepulturaService) MassCreate(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input MassCreateInput) (*MassCreatePreview, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repos.Sepulturas.ExistingLocations(ctx, tenantID, input.CemeteryID, input.Bloque)
	if err != nil {
		return nil, err
	}

	result := &MassCreatePreview{}
	var batch []*registry.Sepultura
	for fila := input.FilaFrom; fila <= input.FilaTo; fila++ {
		for col := input.ColumnaFrom; col <= input.ColumnaTo; col++ {
			if existing[fmt.Sprintf("%d:%d", fila, col)] {
				result.Skipped++
				continue
			}
			sep, err := registry.NewSepultura(tenantID, input.CemeteryID, input.Bloque, fila, col, input.numeroFor(fila, col), registry.EstadoLliure)
			if err != nil {
				return nil, err
			}
			sep.Via = input.Via
			sep.Modalidad = input.Modalidad
			sep.TipoBloque = input.TipoBloque
			sep.TipoLapida = input.TipoLapida
			sep.Orientacion = input.Orientacion
			if userID != nil {
				sep.SetCreatedBy(*userID)
			}
			batch = append(batch, sep)
			result.ToCreate++
		}
	}
	if err := s.repos.Sepulturas.SaveBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.log.Info("mass-created graves",
		zap.String("bloque", input.Bloque),
		zap.Int("created", result.ToCreate),
		zap.Int("skipped", result.Skipped),
		zap.String("tenant_id", tenantID.String()))
	return result, nil
}

// Movimientos lists the grave ledger newest first
func (s *SepulturaService) Movimientos(ctx context.Context, tenantID, sepulturaID uuid.UUID) ([]registry.MovimientoSepultura, error) {
	if _, err := s.repos.Sepulturas.FindByID(ctx, tenantID, sepulturaID); err != nil {
		return nil, err
	}
	return s.repos.Movimientos.FindBySepultura(ctx, tenantID, sepulturaID)
}

// Cemeteries lists the tenant's cemeteries
func (s *SepulturaService) Cemeteries(ctx context.Context, tenantID uuid.UUID) ([]registry.Cemetery, error) {
	return s.repos.Cemeteries.FindAll(ctx, tenantID)
}

// CreateCemetery registers a cemetery site
func (s *SepulturaService) CreateCemetery(ctx context.Context, tenantID uuid.UUID, name, municipality string) (*registry.Cemetery, error) {
	c, err := registry.NewCemetery(tenantID, name, municipality)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Cemeteries.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SearchPersons finds party records by accent-insensitive name
func (s *SepulturaService) SearchPersons(ctx context.Context, tenantID uuid.UUID, name string, filter shared.Filter) (shared.Paginated[registry.Person], error) {
	return s.repos.Persons.SearchByName(ctx, tenantID, name, filter)
}
