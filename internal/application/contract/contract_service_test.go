package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

type contractFixture struct {
	ctx      context.Context
	svc      *ContractService
	repos    *persistence.Repositories
	capture  *testutil.CaptureHandler
	tenantID uuid.UUID
	cem      uuid.UUID
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()
	ctx := context.Background()
	db, repos := testutil.NewTestDB(t)
	bus, capture := testutil.NewCaptureBus()
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer, err := printing.NewRenderer(false, time.Second)
	require.NoError(t, err)

	org := testutil.SeedOrganization(t, ctx, repos)
	cem := testutil.SeedCemetery(t, ctx, repos, org.ID)

	return &contractFixture{
		ctx:      ctx,
		svc:      NewContractService(db, repos, bus, docs, renderer, zap.NewNop()),
		repos:    repos,
		capture:  capture,
		tenantID: org.ID,
		cem:      cem.ID,
	}
}

func concessionInput(sepulturaID uuid.UUID) CreateContractInput {
	return CreateContractInput{
		SepulturaID:     sepulturaID,
		Tipo:            string(contract.DerechoConcesion),
		FechaInicio:     time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		FechaFin:        time.Date(2073, time.December, 31, 0, 0, 0, 0, time.UTC),
		AnnualFeeAmount: decimal.NewFromFloat(30.00),
		Holder: PersonInput{
			FirstName: "Joan",
			LastName:  "Ferrer",
			DniNif:    "11111111H",
		},
	}
}

func TestCreateContractOccupiesGrave(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)

	c, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)
	assert.Equal(t, contract.ContratoActivo, c.Estado)

	reloaded, err := f.repos.Sepulturas.FindByID(f.ctx, f.tenantID, sep.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.EstadoOcupada, reloaded.Estado)

	holder, err := f.repos.Ownership.FindActiveByContract(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.True(t, holder.IsActive())
	assert.False(t, holder.IsPensioner)

	person, err := f.repos.Persons.FindByDniNif(f.ctx, f.tenantID, "11111111H")
	require.NoError(t, err)
	assert.Equal(t, person.ID, holder.PersonID)

	movs, err := f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, sep.ID)
	require.NoError(t, err)
	require.NotEmpty(t, movs)
	assert.Equal(t, registry.MovimientoContrato, movs[0].Tipo)

	assert.NotEmpty(t, f.capture.Handled())
}

func TestCreateContractRequiresDisponibleGrave(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoLliure)

	_, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.Error(t, err)
}

func TestCreateContractRejectsSecondActiveContract(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)

	_, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)
	_, err = f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.Error(t, err)
}

func TestCreateContractEnforcesDurationCap(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)

	input := concessionInput(sep.ID)
	input.FechaFin = input.FechaInicio.AddDate(60, 0, 0)
	_, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, input)
	require.Error(t, err)

	// Pre-reform concessions keep their 99-year term.
	input.Legacy99Years = true
	input.FechaFin = input.FechaInicio.AddDate(99, 0, 0)
	_, err = f.svc.CreateContract(f.ctx, f.tenantID, nil, input)
	require.NoError(t, err)
}

func TestNominateBeneficiaryReplacesActive(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)
	c, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)

	first, err := f.svc.NominateBeneficiary(f.ctx, f.tenantID, nil, c.ID,
		PersonInput{FirstName: "Anna", LastName: "Roca", DniNif: "22222222J"})
	require.NoError(t, err)

	second, err := f.svc.NominateBeneficiary(f.ctx, f.tenantID, nil, c.ID,
		PersonInput{FirstName: "Pere", LastName: "Soler", DniNif: "33333333K"})
	require.NoError(t, err)

	active, err := f.repos.Beneficiarios.FindActiveByContract(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.PersonID, active.PersonID)

	history, err := f.repos.Beneficiarios.FindHistoryByContract(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	closed := 0
	for _, b := range history {
		if !b.IsActive() {
			closed++
			assert.Equal(t, first.PersonID, b.PersonID)
		}
	}
	assert.Equal(t, 1, closed)
}

func TestSetAndClearPensioner(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)
	c, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)

	// A past since-date needs the explicit retroactive flag.
	since := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.SetPensioner(f.ctx, f.tenantID, nil, c.ID, true, &since, false)
	require.Error(t, err)

	holder, err := f.svc.SetPensioner(f.ctx, f.tenantID, nil, c.ID, true, &since, true)
	require.NoError(t, err)
	assert.True(t, holder.IsPensioner)
	require.NotNil(t, holder.PensionerSinceDate)
	assert.Equal(t, 2024, holder.PensionerSinceDate.Year())

	holder, err = f.svc.SetPensioner(f.ctx, f.tenantID, nil, c.ID, false, nil, false)
	require.NoError(t, err)
	assert.False(t, holder.IsPensioner)
	assert.Nil(t, holder.PensionerSinceDate)
}

func TestSetPensionerDefaultsToToday(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)
	c, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)

	holder, err := f.svc.SetPensioner(f.ctx, f.tenantID, nil, c.ID, true, nil, false)
	require.NoError(t, err)
	require.NotNil(t, holder.PensionerSinceDate)
	assert.Equal(t, time.Now().Year(), holder.PensionerSinceDate.Year())
}

func TestExtinguishReleasesGrave(t *testing.T) {
	f := newContractFixture(t)
	sep := testutil.SeedSepultura(t, f.ctx, f.repos, f.tenantID, f.cem, registry.EstadoDisponible)
	c, err := f.svc.CreateContract(f.ctx, f.tenantID, nil, concessionInput(sep.ID))
	require.NoError(t, err)

	require.NoError(t, f.svc.Extinguish(f.ctx, f.tenantID, nil, c.ID))

	reloaded, err := f.repos.Contratos.FindByID(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ContratoExtinguido, reloaded.Estado)

	freed, err := f.repos.Sepulturas.FindByID(f.ctx, f.tenantID, sep.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.EstadoDisponible, freed.Estado)

	require.Error(t, f.svc.Extinguish(f.ctx, f.tenantID, nil, c.ID))
}
