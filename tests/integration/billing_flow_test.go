package integration

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	billingapp "github.com/cementiri/backend/internal/application/billing"
	"github.com/cementiri/backend/internal/domain/billing"
	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

var dniCounter atomic.Int64

func uniqueDNI() string {
	return fmt.Sprintf("%08dT", 90000000+dniCounter.Add(1))
}

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

type billingFlowSetup struct {
	ctx      context.Context
	tdb      *TestDB
	billing  *billingapp.BillingService
	tenantID uuid.UUID
	contract *contract.DerechoFunerarioContrato
}

func newBillingFlowSetup(t *testing.T) *billingFlowSetup {
	t.Helper()
	ctx := context.Background()
	tdb := NewSharedTestDB(t)

	bus, _ := testutil.NewCaptureBus()
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer, err := printing.NewRenderer(false, time.Second)
	require.NoError(t, err)

	org := testutil.SeedOrganization(t, ctx, tdb.Repos)
	cem := testutil.SeedCemetery(t, ctx, tdb.Repos, org.ID)
	sep := testutil.SeedSepultura(t, ctx, tdb.Repos, org.ID, cem.ID, registry.EstadoDisponible)
	holder := testutil.SeedPerson(t, ctx, tdb.Repos, org.ID, "Dolors", "Pla")
	c, _ := testutil.SeedActiveContract(t, ctx, tdb.Repos, org.ID, sep, holder.ID)

	return &billingFlowSetup{
		ctx:      ctx,
		tdb:      tdb,
		billing:  billingapp.NewBillingService(tdb.Database, tdb.Repos, bus, docs, renderer, zap.NewNop()),
		tenantID: org.ID,
		contract: c,
	}
}

// TestBillingOldestFirstFlow generates three fee years and collects them at
// the counter, checking the no-gaps rule and invoice numbering on PostgreSQL.
func TestBillingOldestFirstFlow(t *testing.T) {
	s := newBillingFlowSetup(t)

	for year := 2022; year <= 2024; year++ {
		result, err := s.billing.GenerateTickets(s.ctx, s.tenantID, year)
		require.NoError(t, err)
		require.Equal(t, 1, result.Created, "year %d", year)
	}

	debt, err := s.billing.OutstandingByContract(s.ctx, s.tenantID, s.contract.ID)
	require.NoError(t, err)
	require.Len(t, debt.Tickets, 3)
	assert.True(t, debt.Total.Equal(decimal.NewFromFloat(90.00)))

	byYear := map[int]uuid.UUID{}
	for _, ticket := range debt.Tickets {
		byYear[ticket.Anio] = ticket.ID
	}

	// Skipping 2022 violates the oldest-first rule.
	_, err = s.billing.CollectTickets(s.ctx, s.tenantID, nil, s.contract.ID,
		[]uuid.UUID{byYear[2023]}, nil, "EFECTIVO")
	require.Error(t, err)

	result, err := s.billing.CollectTickets(s.ctx, s.tenantID, nil, s.contract.ID,
		[]uuid.UUID{byYear[2022], byYear[2023]}, nil, "EFECTIVO")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("F-CEM-%d-0001", time.Now().Year()), result.Invoice.Numero)
	assert.Equal(t, billing.InvoicePagada, result.Invoice.Estado)
	assert.True(t, result.Invoice.TotalAmount.Equal(decimal.NewFromFloat(60.00)))

	remaining, err := s.billing.OutstandingByContract(s.ctx, s.tenantID, s.contract.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Tickets, 1)
	assert.Equal(t, 2024, remaining.Tickets[0].Anio)

	// Generation is idempotent even after a collection.
	again, err := s.billing.GenerateTickets(s.ctx, s.tenantID, 2022)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 1, again.Skipped)
}
