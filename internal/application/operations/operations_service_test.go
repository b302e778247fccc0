package operations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/operations"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

type operationsFixture struct {
	ctx      context.Context
	svc      *OperationsService
	repos    *persistence.Repositories
	tenantID uuid.UUID
	sep      *registry.Sepultura
}

func newOperationsFixture(t *testing.T) *operationsFixture {
	t.Helper()
	ctx := context.Background()
	db, repos := testutil.NewTestDB(t)
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer, err := printing.NewRenderer(false, time.Second)
	require.NoError(t, err)

	org := testutil.SeedOrganization(t, ctx, repos)
	cem := testutil.SeedCemetery(t, ctx, repos, org.ID)
	sep := testutil.SeedSepultura(t, ctx, repos, org.ID, cem.ID, registry.EstadoDisponible)

	return &operationsFixture{
		ctx:      ctx,
		svc:      NewOperationsService(db, repos, docs, renderer, zap.NewNop()),
		repos:    repos,
		tenantID: org.ID,
		sep:      sep,
	}
}

func TestCreateExpedienteNumbering(t *testing.T) {
	f := newOperationsFixture(t)

	first, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "INHUMACION"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("C-%d-0001", time.Now().Year()), first.Numero)
	assert.Equal(t, operations.ExpedienteAbierto, first.Estado)

	second, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "EXHUMACION"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("C-%d-0002", time.Now().Year()), second.Numero)
}

func TestCreateExpedienteWritesGraveLedger(t *testing.T) {
	f := newOperationsFixture(t)

	exp, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{
		Tipo: "TRASLADO", SepulturaID: &f.sep.ID,
	})
	require.NoError(t, err)

	movs, err := f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, f.sep.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, registry.MovimientoAltaExpediente, movs[0].Tipo)
	assert.Contains(t, movs[0].Detalle, exp.Numero)

	// Without a grave there is nothing to annotate.
	_, err = f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "OTRO"})
	require.NoError(t, err)
	movs, err = f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, f.sep.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestCreateExpedienteRejectsUnknownReferences(t *testing.T) {
	f := newOperationsFixture(t)

	missing := uuid.New()
	_, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{
		Tipo: "INHUMACION", SepulturaID: &missing,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "CREMACION"})
	require.Error(t, err, "unknown tipo")
}

func TestChangeExpedienteEstado(t *testing.T) {
	f := newOperationsFixture(t)
	exp, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "INHUMACION"})
	require.NoError(t, err)

	exp, err = f.svc.ChangeExpedienteEstado(f.ctx, f.tenantID, nil, exp.ID, "EN_CURSO")
	require.NoError(t, err)
	assert.Equal(t, operations.ExpedienteEnCurso, exp.Estado)

	exp, err = f.svc.ChangeExpedienteEstado(f.ctx, f.tenantID, nil, exp.ID, "CERRADO")
	require.NoError(t, err)
	assert.True(t, exp.IsTerminal())

	// Terminal states have no outgoing transitions.
	_, err = f.svc.ChangeExpedienteEstado(f.ctx, f.tenantID, nil, exp.ID, "ABIERTO")
	require.Error(t, err)
}

func TestCreateOrdenTrabajoBlockedOnFinishedExpediente(t *testing.T) {
	f := newOperationsFixture(t)
	exp, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "REDUCCION"})
	require.NoError(t, err)

	orden, err := f.svc.CreateOrdenTrabajo(f.ctx, f.tenantID, nil, exp.ID, "Obrir nínxol")
	require.NoError(t, err)
	assert.Equal(t, operations.OrdenPendiente, orden.Estado)

	_, err = f.svc.ChangeExpedienteEstado(f.ctx, f.tenantID, nil, exp.ID, "ANULADO")
	require.NoError(t, err)

	_, err = f.svc.CreateOrdenTrabajo(f.ctx, f.tenantID, nil, exp.ID, "Tancar nínxol")
	require.Error(t, err)
}

func TestCompleteOrdenTrabajoIsIdempotent(t *testing.T) {
	f := newOperationsFixture(t)
	exp, err := f.svc.CreateExpediente(f.ctx, f.tenantID, nil, CreateExpedienteInput{Tipo: "INHUMACION"})
	require.NoError(t, err)
	orden, err := f.svc.CreateOrdenTrabajo(f.ctx, f.tenantID, nil, exp.ID, "Obrir nínxol")
	require.NoError(t, err)

	done, err := f.svc.CompleteOrdenTrabajo(f.ctx, f.tenantID, orden.ID)
	require.NoError(t, err)
	assert.Equal(t, operations.OrdenCompletada, done.Estado)
	require.NotNil(t, done.CompletedAt)
	completedAt := *done.CompletedAt

	again, err := f.svc.CompleteOrdenTrabajo(f.ctx, f.tenantID, orden.ID)
	require.NoError(t, err)
	assert.Equal(t, completedAt, *again.CompletedAt)

	ordenes, err := f.svc.OrdenesByExpediente(f.ctx, f.tenantID, exp.ID)
	require.NoError(t, err)
	assert.Len(t, ordenes, 1)
}

func TestStockEntryAccumulates(t *testing.T) {
	f := newOperationsFixture(t)

	stock, err := f.svc.StockEntry(f.ctx, f.tenantID, nil, StockMovementInput{
		Codigo: "lap-90x60", Descripcion: "Lápida 90x60 marbre", Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "LAP-90X60", stock.Codigo)
	assert.Equal(t, 5, stock.AvailableQty)

	stock, err = f.svc.StockEntry(f.ctx, f.tenantID, nil, StockMovementInput{
		Codigo: "LAP-90X60", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, stock.AvailableQty)

	movs, err := f.svc.StockMovimientos(f.ctx, f.tenantID, stock.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestStockExitGuards(t *testing.T) {
	f := newOperationsFixture(t)
	_, err := f.svc.StockEntry(f.ctx, f.tenantID, nil, StockMovementInput{
		Codigo: "LAP-60X40", Descripcion: "Lápida petita", Quantity: 2,
	})
	require.NoError(t, err)

	_, err = f.svc.StockExit(f.ctx, f.tenantID, nil, StockMovementInput{Codigo: "LAP-60X40", Quantity: 3})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = f.svc.StockExit(f.ctx, f.tenantID, nil, StockMovementInput{Codigo: "NO-EXISTE", Quantity: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)

	stock, err := f.svc.StockExit(f.ctx, f.tenantID, nil, StockMovementInput{Codigo: "LAP-60X40", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, stock.AvailableQty)
}

func TestStockExitAnnotatesGrave(t *testing.T) {
	f := newOperationsFixture(t)
	_, err := f.svc.StockEntry(f.ctx, f.tenantID, nil, StockMovementInput{
		Codigo: "LAP-90X60", Descripcion: "Lápida 90x60", Quantity: 1,
	})
	require.NoError(t, err)

	_, err = f.svc.StockExit(f.ctx, f.tenantID, nil, StockMovementInput{
		Codigo: "LAP-90X60", Quantity: 1, SepulturaID: &f.sep.ID,
	})
	require.NoError(t, err)

	movs, err := f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, f.sep.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, registry.MovimientoLapida, movs[0].Tipo)
}

func TestInscripcionAdvancesOneStepAtATime(t *testing.T) {
	f := newOperationsFixture(t)

	ins, err := f.svc.CreateInscripcion(f.ctx, f.tenantID, nil, f.sep.ID, nil, "Família Puig Serra")
	require.NoError(t, err)
	assert.Equal(t, operations.InscripcionPendienteGrabar, ins.Estado)

	// Skipping states is not allowed.
	_, err = f.svc.AdvanceInscripcion(f.ctx, f.tenantID, ins.ID, "PENDIENTE_NOTIFICAR")
	require.Error(t, err)

	ins, err = f.svc.AdvanceInscripcion(f.ctx, f.tenantID, ins.ID, "PENDIENTE_COLOCAR")
	require.NoError(t, err)
	ins, err = f.svc.AdvanceInscripcion(f.ctx, f.tenantID, ins.ID, "PENDIENTE_NOTIFICAR")
	require.NoError(t, err)
	ins, err = f.svc.AdvanceInscripcion(f.ctx, f.tenantID, ins.ID, "NOTIFICADA")
	require.NoError(t, err)
	assert.Equal(t, operations.InscripcionNotificada, ins.Estado)

	_, err = f.svc.AdvanceInscripcion(f.ctx, f.tenantID, ins.ID, "NOTIFICADA")
	require.Error(t, err, "NOTIFICADA is terminal")
}

func TestCreateInscripcionRequiresGrave(t *testing.T) {
	f := newOperationsFixture(t)
	_, err := f.svc.CreateInscripcion(f.ctx, f.tenantID, nil, uuid.New(), nil, "Text")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
