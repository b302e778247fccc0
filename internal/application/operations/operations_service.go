package operations

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/operations"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
)

// OperationsService manages dossiers, work orders, gravestone stock and
// lateral inscriptions.
type OperationsService struct {
	db       *persistence.Database
	repos    *persistence.Repositories
	storage  storage.DocumentStorage
	renderer *printing.Renderer
	log      *zap.Logger
}

// NewOperationsService creates the service
func NewOperationsService(db *persistence.Database, repos *persistence.Repositories, docs storage.DocumentStorage, renderer *printing.Renderer, log *zap.Logger) *OperationsService {
	return &OperationsService{db: db, repos: repos, storage: docs, renderer: renderer, log: log}
}

// CreateExpedienteInput opens an operational dossier
type CreateExpedienteInput struct {
	Tipo               string
	SepulturaID        *uuid.UUID
	DeclarantePersonID *uuid.UUID
	FechaServicio      *time.Time
	Notes              string
}

// CreateExpediente opens a dossier with a sequential C-{year}-NNNN number and
// writes the ALTA_EXPEDIENTE movement when a grave is attached.
func (s *OperationsService) CreateExpediente(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateExpedienteInput) (*operations.Expediente, error) {
	if input.SepulturaID != nil {
		if _, err := s.repos.Sepulturas.FindByID(ctx, tenantID, *input.SepulturaID); err != nil {
			return nil, err
		}
	}
	if input.DeclarantePersonID != nil {
		if _, err := s.repos.Persons.FindByID(ctx, tenantID, *input.DeclarantePersonID); err != nil {
			return nil, err
		}
	}

	var exp *operations.Expediente
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		prefix := fmt.Sprintf("C-%d-", time.Now().Year())
		count, err := repos.Expedientes.CountNumbersLike(ctx, tenantID, prefix)
		if err != nil {
			return err
		}
		exp, err = operations.NewExpediente(tenantID,
			fmt.Sprintf("%s%04d", prefix, count+1), operations.ExpedienteTipo(input.Tipo))
		if err != nil {
			return err
		}
		exp.SepulturaID = input.SepulturaID
		exp.DeclarantePersonID = input.DeclarantePersonID
		exp.Notes = input.Notes
		if input.FechaServicio != nil {
			d := shared.DateOnly(*input.FechaServicio)
			exp.FechaServicio = &d
		}
		if userID != nil {
			exp.SetCreatedBy(*userID)
		}
		if err := repos.Expedientes.Save(ctx, exp); err != nil {
			return err
		}
		if exp.SepulturaID == nil {
			return nil
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, *exp.SepulturaID, registry.MovimientoAltaExpediente,
			fmt.Sprintf("Expediente %s (%s)", exp.Numero, exp.Tipo), userID))
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// GetExpediente loads a dossier
func (s *OperationsService) GetExpediente(ctx context.Context, tenantID, id uuid.UUID) (*operations.Expediente, error) {
	return s.repos.Expedientes.FindByID(ctx, tenantID, id)
}

// ListExpedientes lists dossiers filtered by estado, tipo or grave
func (s *OperationsService) ListExpedientes(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[operations.Expediente], error) {
	return s.repos.Expedientes.FindAll(ctx, tenantID, filter)
}

// ChangeExpedienteEstado moves a dossier along its state graph
func (s *OperationsService) ChangeExpedienteEstado(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id uuid.UUID, newEstado string) (*operations.Expediente, error) {
	target, err := operations.ParseExpedienteEstado(newEstado)
	if err != nil {
		return nil, err
	}
	exp, err := s.repos.Expedientes.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	old := exp.Estado
	if err := exp.TransitionTo(target); err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Expedientes.Save(ctx, exp); err != nil {
			return err
		}
		if exp.SepulturaID == nil {
			return nil
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, *exp.SepulturaID, registry.MovimientoCambioEstadoExpediente,
			fmt.Sprintf("Expediente %s: %s -> %s", exp.Numero, old, exp.Estado), userID))
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// CreateOrdenTrabajo raises a work order under an open dossier
func (s *OperationsService) CreateOrdenTrabajo(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, expedienteID uuid.UUID, descripcion string) (*operations.OrdenTrabajo, error) {
	exp, err := s.repos.Expedientes.FindByID(ctx, tenantID, expedienteID)
	if err != nil {
		return nil, err
	}
	if exp.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "cannot raise work orders on a finished expediente")
	}
	orden, err := operations.NewOrdenTrabajo(tenantID, exp.ID, descripcion)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		orden.SetCreatedBy(*userID)
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.OrdenesTrabajo.Save(ctx, orden); err != nil {
			return err
		}
		if exp.SepulturaID == nil {
			return nil
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, *exp.SepulturaID, registry.MovimientoOTExpediente,
			fmt.Sprintf("OT sobre expediente %s: %s", exp.Numero, descripcion), userID))
	})
	if err != nil {
		return nil, err
	}
	return orden, nil
}

// CompleteOrdenTrabajo finishes a work order
func (s *OperationsService) CompleteOrdenTrabajo(ctx context.Context, tenantID, id uuid.UUID) (*operations.OrdenTrabajo, error) {
	orden, err := s.repos.OrdenesTrabajo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	orden.Complete()
	if err := s.repos.OrdenesTrabajo.Save(ctx, orden); err != nil {
		return nil, err
	}
	return orden, nil
}

// OrdenesByExpediente lists the work orders of a dossier
func (s *OperationsService) OrdenesByExpediente(ctx context.Context, tenantID, expedienteID uuid.UUID) ([]operations.OrdenTrabajo, error) {
	return s.repos.OrdenesTrabajo.FindByExpediente(ctx, tenantID, expedienteID)
}

// PrintOrdenTrabajo renders the printable work order PDF
func (s *OperationsService) PrintOrdenTrabajo(ctx context.Context, tenantID, id uuid.UUID) ([]byte, error) {
	if s.renderer == nil || !s.renderer.Enabled() {
		return nil, shared.NewDomainError("INVALID_STATE", "pdf rendering is disabled")
	}
	orden, err := s.repos.OrdenesTrabajo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	exp, err := s.repos.Expedientes.FindByID(ctx, tenantID, orden.ExpedienteID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	location := ""
	if exp.SepulturaID != nil {
		if sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, *exp.SepulturaID); err == nil {
			location = sep.LocationLabel()
		}
	}

	pdf, err := s.renderer.RenderOrdenTrabajo(ctx, printing.OrdenTrabajoData{
		OrganizationName: org.Name,
		ExpedienteNumero: exp.Numero,
		ExpedienteTipo:   string(exp.Tipo),
		GraveLocation:    location,
		Descripcion:      orden.Descripcion,
		IssuedAt:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/expedientes/%s/ot-%s.pdf", tenantID, exp.ID, orden.ID)
	if err := s.storage.Put(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return nil, err
	}
	return pdf, nil
}

// StockMovementInput is one stock entry or exit
type StockMovementInput struct {
	Codigo       string
	Descripcion  string
	Quantity     int
	SepulturaID  *uuid.UUID
	ExpedienteID *uuid.UUID
	Notes        string
}

// StockEntry adds gravestones to inventory, creating the stock row on first
// entry of a codigo.
func (s *OperationsService) StockEntry(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input StockMovementInput) (*operations.LapidaStock, error) {
	var stock *operations.LapidaStock
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		var err error
		stock, err = repos.LapidaStock.FindByCodigo(ctx, tenantID, input.Codigo)
		if err == shared.ErrNotFound {
			stock, err = operations.NewLapidaStock(tenantID, input.Codigo, input.Descripcion)
		}
		if err != nil {
			return err
		}
		if err := stock.Enter(input.Quantity); err != nil {
			return err
		}
		if err := repos.LapidaStock.Save(ctx, stock); err != nil {
			return err
		}
		mov := operations.NewStockMovimiento(tenantID, stock.ID, operations.StockEntrada, input.Quantity, input.Notes)
		if userID != nil {
			mov.SetCreatedBy(*userID)
		}
		return repos.LapidaStock.AppendMovimiento(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

// StockExit removes gravestones from inventory, optionally tying the exit to
// a grave and expediente and writing the LAPIDA movement on the grave.
func (s *OperationsService) StockExit(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input StockMovementInput) (*operations.LapidaStock, error) {
	var stock *operations.LapidaStock
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		var err error
		stock, err = repos.LapidaStock.FindByCodigo(ctx, tenantID, input.Codigo)
		if err != nil {
			return err
		}
		if err := stock.Exit(input.Quantity); err != nil {
			return err
		}
		if err := repos.LapidaStock.Save(ctx, stock); err != nil {
			return err
		}
		mov := operations.NewStockMovimiento(tenantID, stock.ID, operations.StockSalida, input.Quantity, input.Notes)
		mov.SepulturaID = input.SepulturaID
		mov.ExpedienteID = input.ExpedienteID
		if userID != nil {
			mov.SetCreatedBy(*userID)
		}
		if err := repos.LapidaStock.AppendMovimiento(ctx, mov); err != nil {
			return err
		}
		if input.SepulturaID == nil {
			return nil
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, *input.SepulturaID, registry.MovimientoLapida,
			fmt.Sprintf("Salida de lápida %s x%d", stock.Codigo, input.Quantity), userID))
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

// ListStock lists the gravestone inventory
func (s *OperationsService) ListStock(ctx context.Context, tenantID uuid.UUID) ([]operations.LapidaStock, error) {
	return s.repos.LapidaStock.FindAll(ctx, tenantID)
}

// StockMovimientos lists the ledger of one stock row
func (s *OperationsService) StockMovimientos(ctx context.Context, tenantID, stockID uuid.UUID) ([]operations.LapidaStockMovimiento, error) {
	if _, err := s.repos.LapidaStock.FindByID(ctx, tenantID, stockID); err != nil {
		return nil, err
	}
	return s.repos.LapidaStock.FindMovimientos(ctx, tenantID, stockID)
}

// CreateInscripcion registers a lateral inscription pending engraving
func (s *OperationsService) CreateInscripcion(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, sepulturaID uuid.UUID, expedienteID *uuid.UUID, texto string) (*operations.InscripcionLateral, error) {
	if _, err := s.repos.Sepulturas.FindByID(ctx, tenantID, sepulturaID); err != nil {
		return nil, err
	}
	ins, err := operations.NewInscripcion(tenantID, sepulturaID, texto)
	if err != nil {
		return nil, err
	}
	ins.ExpedienteID = expedienteID
	if userID != nil {
		ins.SetCreatedBy(*userID)
	}
	if err := s.repos.Inscripciones.Save(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

// ListInscripciones lists inscriptions, filterable by estado
func (s *OperationsService) ListInscripciones(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[operations.InscripcionLateral], error) {
	return s.repos.Inscripciones.FindAll(ctx, tenantID, filter)
}

// AdvanceInscripcion moves an inscription to the next state in its chain
func (s *OperationsService) AdvanceInscripcion(ctx context.Context, tenantID, id uuid.UUID, newEstado string) (*operations.InscripcionLateral, error) {
	target, err := operations.ParseInscripcionEstado(newEstado)
	if err != nil {
		return nil, err
	}
	ins, err := s.repos.Inscripciones.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ins.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.repos.Inscripciones.Save(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}
