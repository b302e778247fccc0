package billing

import (
	"context"
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
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

type billingFixture struct {
	ctx      context.Context
	svc      *BillingService
	repos    *persistence.Repositories
	capture  *testutil.CaptureHandler
	tenantID uuid.UUID
	sep      *registry.Sepultura
	contract *contract.DerechoFunerarioContrato
	holder   *contract.OwnershipRecord
}

func newBillingFixture(t *testing.T) *billingFixture {
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
	sep := testutil.SeedSepultura(t, ctx, repos, org.ID, cem.ID, registry.EstadoDisponible)
	holder := testutil.SeedPerson(t, ctx, repos, org.ID, "Maria", "Puig")
	c, record := testutil.SeedActiveContract(t, ctx, repos, org.ID, sep, holder.ID)

	return &billingFixture{
		ctx:      ctx,
		svc:      NewBillingService(db, repos, bus, docs, renderer, zap.NewNop()),
		repos:    repos,
		capture:  capture,
		tenantID: org.ID,
		sep:      sep,
		contract: c,
		holder:   record,
	}
}

func TestGenerateTicketsIsIdempotent(t *testing.T) {
	f := newBillingFixture(t)

	result, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)

	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, billing.TicketPendiente, ticket.Estado)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(30.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoNone, ticket.DescuentoTipo)

	again, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 1, again.Skipped)
}

func TestGenerateTicketsPensionerDiscountFromFlagYear(t *testing.T) {
	f := newBillingFixture(t)

	since := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	f.holder.SetPensioner(&since)
	require.NoError(t, f.repos.Ownership.Save(f.ctx, f.holder))

	// Before the flag year the full fee applies.
	result, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2022)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2022)
	require.NoError(t, err)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(30.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoNone, ticket.DescuentoTipo)

	// From the flag year on, the default 10% discount is applied.
	_, err = f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	ticket, err = f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(27.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoPensionista, ticket.DescuentoTipo)
}

func TestGenerateTicketsExemptsPropiaGraves(t *testing.T) {
	ctx := context.Background()
	db, repos := testutil.NewTestDB(t)
	bus, _ := testutil.NewCaptureBus()
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer, err := printing.NewRenderer(false, time.Second)
	require.NoError(t, err)
	svc := NewBillingService(db, repos, bus, docs, renderer, zap.NewNop())

	org := testutil.SeedOrganization(t, ctx, repos)
	cem := testutil.SeedCemetery(t, ctx, repos, org.ID)
	sep := testutil.SeedSepultura(t, ctx, repos, org.ID, cem.ID, registry.EstadoPropia)

	// A privately owned grave can still carry a contract on record.
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2069, time.December, 31, 0, 0, 0, 0, time.UTC)
	c, err := contract.NewDerechoFunerarioContrato(org.ID, sep.ID,
		contract.DerechoConcesion, start, end, false, decimal.NewFromFloat(30.00))
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, repos.Contratos.Save(ctx, c))

	result, err := svc.GenerateTickets(ctx, org.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Exempt)

	_, err = repos.Tickets.FindByContractAndYear(ctx, org.ID, c.ID, 2024)
	assert.Error(t, err)
}

func TestCollectTicketsEnforcesOldestFirst(t *testing.T) {
	f := newBillingFixture(t)

	for _, year := range []int{2022, 2023, 2024} {
		_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, year)
		require.NoError(t, err)
	}
	outstanding, err := f.repos.Tickets.FindOutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 3)
	require.Equal(t, 2022, outstanding[0].Anio)

	// Paying 2023 while 2022 is unpaid must be rejected.
	_, err = f.svc.CollectTickets(f.ctx, f.tenantID, nil, f.contract.ID,
		[]uuid.UUID{outstanding[1].ID}, nil, "EFECTIVO")
	require.Error(t, err)

	result, err := f.svc.CollectTickets(f.ctx, f.tenantID, nil, f.contract.ID,
		[]uuid.UUID{outstanding[0].ID, outstanding[1].ID}, nil, "EFECTIVO")
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	require.NotNil(t, result.Payment)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("F-CEM-%d-0001", year), result.Invoice.Numero)
	assert.Equal(t, fmt.Sprintf("R-CEM-%d-0001", year), result.Payment.ReceiptNumber)
	assert.True(t, result.Invoice.TotalAmount.Equal(decimal.NewFromFloat(60.00)),
		"total %s", result.Invoice.TotalAmount)

	remaining, err := f.repos.Tickets.FindOutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 2024, remaining[0].Anio)

	collected, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2022)
	require.NoError(t, err)
	assert.Equal(t, billing.TicketCobrado, collected.Estado)
	require.NotNil(t, collected.InvoiceID)
	assert.Equal(t, result.Invoice.ID, *collected.InvoiceID)

	movs, err := f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, f.sep.ID)
	require.NoError(t, err)
	found := false
	for _, m := range movs {
		if m.Tipo == registry.MovimientoTasas {
			found = true
		}
	}
	assert.True(t, found, "expected a TASAS movimiento on the grave")
	assert.Len(t, f.capture.Handled(), 2)
}

func TestCollectTicketsRecomputesPensionerAmount(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)

	// The holder becomes a pensioner after generation; the counter recomputes.
	since := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	f.holder.SetPensioner(&since)
	require.NoError(t, f.repos.Ownership.Save(f.ctx, f.holder))

	outstanding, err := f.repos.Tickets.FindOutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)

	result, err := f.svc.CollectTickets(f.ctx, f.tenantID, nil, f.contract.ID,
		[]uuid.UUID{outstanding[0].ID}, nil, "TARJETA")
	require.NoError(t, err)
	assert.True(t, result.Invoice.TotalAmount.Equal(decimal.NewFromFloat(27.00)),
		"total %s", result.Invoice.TotalAmount)

	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(27.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoPensionista, ticket.DescuentoTipo)
}

func TestCollectTicketsExplicitDiscountList(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	outstanding, err := f.repos.Tickets.FindOutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)

	// The holder carries no pensioner flag; the counter grants the
	// discount for the listed ticket anyway.
	result, err := f.svc.CollectTickets(f.ctx, f.tenantID, nil, f.contract.ID,
		[]uuid.UUID{outstanding[0].ID}, []uuid.UUID{outstanding[0].ID}, "EFECTIVO")
	require.NoError(t, err)
	assert.True(t, result.Invoice.TotalAmount.Equal(decimal.NewFromFloat(27.00)),
		"total %s", result.Invoice.TotalAmount)

	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, billing.DescuentoPensionista, ticket.DescuentoTipo)
}

func TestGenerateTicketsUsesYearStartHolder(t *testing.T) {
	f := newBillingFixture(t)

	// The original holder hands over mid-2023 to a pensioner.
	handover := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.holder.Close(handover))
	require.NoError(t, f.repos.Ownership.Save(f.ctx, f.holder))

	successor := testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Pere", "Soler")
	record := contract.NewOwnershipRecord(f.tenantID, f.contract.ID, successor.ID, handover)
	pensionerSince := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	record.SetPensioner(&pensionerSince)
	require.NoError(t, f.repos.Ownership.Save(f.ctx, record))

	// On 2022-01-01 the contract was still held by the non-pensioner.
	_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2022)
	require.NoError(t, err)
	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2022)
	require.NoError(t, err)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(30.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoNone, ticket.DescuentoTipo)

	// For 2024 the pensioner successor is on the snapshot.
	_, err = f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	ticket, err = f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)
	assert.True(t, ticket.Importe.Equal(decimal.NewFromFloat(27.00)), "importe %s", ticket.Importe)
	assert.Equal(t, billing.DescuentoPensionista, ticket.DescuentoTipo)
}

func TestVoidTicket(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	ticket, err := f.repos.Tickets.FindByContractAndYear(f.ctx, f.tenantID, f.contract.ID, 2024)
	require.NoError(t, err)

	voided, err := f.svc.VoidTicket(f.ctx, f.tenantID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.TicketAnulado, voided.Estado)

	// A voided ticket no longer counts as debt.
	debt, err := f.svc.OutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Empty(t, debt.Tickets)
	assert.True(t, debt.Total.IsZero())
}

func TestVoidCollectedTicketFails(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, 2024)
	require.NoError(t, err)
	outstanding, err := f.repos.Tickets.FindOutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	_, err = f.svc.CollectTickets(f.ctx, f.tenantID, nil, f.contract.ID,
		[]uuid.UUID{outstanding[0].ID}, nil, "EFECTIVO")
	require.NoError(t, err)

	_, err = f.svc.VoidTicket(f.ctx, f.tenantID, outstanding[0].ID)
	require.Error(t, err)
}

func TestOutstandingByContract(t *testing.T) {
	f := newBillingFixture(t)

	for _, year := range []int{2023, 2024} {
		_, err := f.svc.GenerateTickets(f.ctx, f.tenantID, year)
		require.NoError(t, err)
	}

	debt, err := f.svc.OutstandingByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, debt.Tickets, 2)
	assert.Equal(t, 2023, debt.Tickets[0].Anio)
	assert.True(t, debt.Total.Equal(decimal.NewFromFloat(60.00)), "total %s", debt.Total)
}
