package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/tests/testutil"
)

type registryFixture struct {
	ctx      context.Context
	svc      *SepulturaService
	repos    *persistence.Repositories
	tenantID uuid.UUID
	cem      uuid.UUID
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	ctx := context.Background()
	db, repos := testutil.NewTestDB(t)
	org := testutil.SeedOrganization(t, ctx, repos)
	cem := testutil.SeedCemetery(t, ctx, repos, org.ID)
	return &registryFixture{
		ctx:      ctx,
		svc:      NewSepulturaService(db, repos, zap.NewNop()),
		repos:    repos,
		tenantID: org.ID,
		cem:      cem.ID,
	}
}

func TestCreateSepultura(t *testing.T) {
	f := newRegistryFixture(t)

	sep, err := f.svc.CreateSepultura(f.ctx, f.tenantID, nil, CreateSepulturaInput{
		CemeteryID: f.cem, Bloque: "SANT PERE", Fila: 2, Columna: 3, Numero: 17,
	})
	require.NoError(t, err)
	assert.Equal(t, registry.EstadoLliure, sep.Estado, "default state is LLIURE")

	// The same grid position cannot be registered twice.
	_, err = f.svc.CreateSepultura(f.ctx, f.tenantID, nil, CreateSepulturaInput{
		CemeteryID: f.cem, Bloque: "SANT PERE", Fila: 2, Columna: 3, Numero: 99,
	})
	require.ErrorIs(t, err, shared.ErrAlreadyExists)

	// OCUPADA can never be requested directly.
	_, err = f.svc.CreateSepultura(f.ctx, f.tenantID, nil, CreateSepulturaInput{
		CemeteryID: f.cem, Bloque: "SANT PERE", Fila: 5, Columna: 5, Numero: 100,
		Estado: string(registry.EstadoOcupada),
	})
	require.Error(t, err)
}

func TestChangeEstadoWritesLedger(t *testing.T) {
	f := newRegistryFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoLliure)

	updated, err := f.svc.ChangeEstado(f.ctx, f.tenantID, nil, sep.ID, "DISPONIBLE")
	require.NoError(t, err)
	assert.Equal(t, registry.EstadoDisponible, updated.Estado)

	movs, err := f.svc.Movimientos(f.ctx, f.tenantID, sep.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, registry.MovimientoCambioEstado, movs[0].Tipo)
	assert.Equal(t, "LLIURE -> DISPONIBLE", movs[0].Detalle)

	// Setting the same state again is a no-op without a ledger entry.
	_, err = f.svc.ChangeEstado(f.ctx, f.tenantID, nil, sep.ID, "DISPONIBLE")
	require.NoError(t, err)
	movs, err = f.svc.Movimientos(f.ctx, f.tenantID, sep.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	// OCUPADA is only reachable through contract activation.
	_, err = f.svc.ChangeEstado(f.ctx, f.tenantID, nil, sep.ID, "OCUPADA")
	require.Error(t, err)
}

func TestMassCreatePreviewAndCommit(t *testing.T) {
	f := newRegistryFixture(t)
	input := MassCreateInput{
		CemeteryID:  f.cem,
		Bloque:      "NOU",
		FilaFrom:    1,
		FilaTo:      2,
		ColumnaFrom: 1,
		ColumnaTo:   3,
		NumeroStart: 100,
		TipoLapida:  "GRANIT",
		Orientacion: "SUD",
	}

	preview, err := f.svc.PreviewMassCreate(f.ctx, f.tenantID, input)
	require.NoError(t, err)
	assert.Equal(t, 6, preview.ToCreate)
	assert.Equal(t, 0, preview.Skipped)
	require.Len(t, preview.Sample, 6)
	assert.Equal(t, 100, preview.Sample[0].Numero)
	assert.Equal(t, 105, preview.Sample[5].Numero)
	assert.False(t, preview.Sample[0].Exists)

	result, err := f.svc.MassCreate(f.ctx, f.tenantID, nil, input)
	require.NoError(t, err)
	assert.Equal(t, 6, result.ToCreate)

	// Numbering is sequential across the grid.
	first, err := f.repos.Sepulturas.FindByLocation(f.ctx, f.tenantID, f.cem, "NOU", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, registry.EstadoLliure, first.Estado)
	assert.Equal(t, "GRANIT", first.TipoLapida)
	assert.Equal(t, "SUD", first.Orientacion)
	last, err := f.repos.Sepulturas.FindByLocation(f.ctx, f.tenantID, f.cem, "NOU", 2, 3, 105)
	require.NoError(t, err)
	assert.Equal(t, 105, last.Numero)

	// A second run skips every taken position.
	again, err := f.svc.MassCreate(f.ctx, f.tenantID, nil, input)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ToCreate)
	assert.Equal(t, 6, again.Skipped)
}

func TestMassCreateValidatesRange(t *testing.T) {
	f := newRegistryFixture(t)

	_, err := f.svc.MassCreate(f.ctx, f.tenantID, nil, MassCreateInput{
		CemeteryID: f.cem, Bloque: "NOU", FilaFrom: 3, FilaTo: 1, ColumnaFrom: 1, ColumnaTo: 2,
	})
	require.Error(t, err)

	_, err = f.svc.MassCreate(f.ctx, f.tenantID, nil, MassCreateInput{
		CemeteryID: f.cem, FilaFrom: 1, FilaTo: 1, ColumnaFrom: 1, ColumnaTo: 1,
	})
	require.Error(t, err, "bloque is required")
}

func TestSearchFiltersByEstadoAndBloque(t *testing.T) {
	f := newRegistryFixture(t)
	testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)
	testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoLliure)
	testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoBloqueada)

	page, err := f.svc.Search(f.ctx, f.tenantID, registry.SepulturaSearchFilter{
		Estado: registry.EstadoDisponible, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, registry.EstadoDisponible, page.Items[0].Sepultura.Estado)
	assert.True(t, page.Items[0].Debt.IsZero())

	page, err = f.svc.Search(f.ctx, f.tenantID, registry.SepulturaSearchFilter{
		Bloque: "A", Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestSearchPersonsByName(t *testing.T) {
	f := newRegistryFixture(t)
	testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Montserrat", "Camps")
	testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Jordi", "Camps")
	testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Nuria", "Font")

	page, err := f.svc.SearchPersons(f.ctx, f.tenantID, "camps", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestMovimientosRequiresExistingSepultura(t *testing.T) {
	f := newRegistryFixture(t)
	_, err := f.svc.Movimientos(f.ctx, f.tenantID, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}
