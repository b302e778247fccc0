package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/billing"
	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/tests/testutil"
)

type reportFixture struct {
	ctx      context.Context
	svc      *ReportService
	repos    *persistence.Repositories
	tenantID uuid.UUID
	contract *contract.DerechoFunerarioContrato
	transfer *transfer.OwnershipTransferCase
}

// newReportFixture seeds one occupied grave with an active contract and a
// pending maintenance ticket, one free grave and one draft transfer case.
func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	ctx := context.Background()
	_, repos := testutil.NewTestDB(t)

	org := testutil.SeedOrganization(t, ctx, repos)
	cem := testutil.SeedCemetery(t, ctx, repos, org.ID)
	sep := testutil.SeedSepultura(t, ctx, repos, org.ID, cem.ID, registry.EstadoDisponible)
	testutil.SeedSepultura(t, ctx, repos, org.ID, cem.ID, registry.EstadoLliure)
	holder := testutil.SeedPerson(t, ctx, repos, org.ID, "Rosa", "Vila")
	c, _ := testutil.SeedActiveContract(t, ctx, repos, org.ID, sep, holder.ID)

	ticket, err := billing.NewTicket(org.ID, c.ID, time.Now().Year(), decimal.NewFromFloat(30.00), billing.DescuentoNone)
	require.NoError(t, err)
	require.NoError(t, repos.Tickets.Save(ctx, ticket))

	tc, err := transfer.NewOwnershipTransferCase(org.ID, c.ID,
		fmt.Sprintf("TR-%d-0001", time.Now().Year()), transfer.InterVivos)
	require.NoError(t, err)
	require.NoError(t, repos.Cases.Save(ctx, tc))

	return &reportFixture{
		ctx:      ctx,
		svc:      NewReportService(repos, zap.NewNop()),
		repos:    repos,
		tenantID: org.ID,
		contract: c,
		transfer: tc,
	}
}

func TestBuildPanel(t *testing.T) {
	f := newReportFixture(t)

	panel, err := f.svc.BuildPanel(f.ctx, f.tenantID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), panel.GravesByEstado["OCUPADA"])
	assert.Equal(t, int64(1), panel.GravesByEstado["LLIURE"])
	assert.Equal(t, int64(1), panel.CasesByStatus["DRAFT"])

	assert.Equal(t, time.Now().Year(), panel.Billing.Year)
	assert.True(t, panel.Billing.Pending.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, panel.Billing.Collected.IsZero())

	// The seeded contract runs for decades and the case is fresh.
	assert.Equal(t, 0, panel.Alerts.StalledCases)
	assert.Equal(t, 0, panel.Alerts.ExpiringContracts)
	assert.Equal(t, 0, panel.Alerts.ExpiringProvisional)
}

func TestExportGravesCSV(t *testing.T) {
	f := newReportFixture(t)

	out, err := f.svc.ExportGravesCSV(f.ctx, f.tenantID, registry.SepulturaSearchFilter{}, 0)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"bloque", "fila", "columna", "numero", "via", "modalidad", "estado", "deuda"}, rows[0])

	// The occupied grave carries the pending ticket as debt.
	debts := map[string]string{}
	for _, row := range rows[1:] {
		debts[row[6]] = row[7]
	}
	assert.Equal(t, "30.00", debts["OCUPADA"])
	assert.Equal(t, "0.00", debts["LLIURE"])
}

func TestExportGravesCSVAppliesFilter(t *testing.T) {
	f := newReportFixture(t)

	out, err := f.svc.ExportGravesCSV(f.ctx, f.tenantID, registry.SepulturaSearchFilter{
		Estado: registry.EstadoLliure,
	}, 0)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "LLIURE", rows[1][6])
}

func TestExportCasesCSV(t *testing.T) {
	f := newReportFixture(t)

	out, err := f.svc.ExportCasesCSV(f.ctx, f.tenantID, transfer.CaseSearchFilter{}, 0)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"numero", "tipo", "estado", "abierto", "resolucion", "cerrado"}, rows[0])
	assert.Equal(t, f.transfer.CaseNumber, rows[1][0])
	assert.Equal(t, "INTER_VIVOS", rows[1][1])
	assert.Equal(t, "DRAFT", rows[1][2])
	assert.Empty(t, rows[1][5], "open cases have no close date")
}

func TestYearlyBillingDefaultsToCurrentYear(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.svc.YearlyBilling(f.ctx, f.tenantID, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), summary.Year)
	assert.True(t, summary.Pending.Equal(decimal.NewFromFloat(30.00)))

	empty, err := f.svc.YearlyBilling(f.ctx, f.tenantID, 1999)
	require.NoError(t, err)
	assert.True(t, empty.Pending.IsZero())
	assert.True(t, empty.Collected.IsZero())
}
