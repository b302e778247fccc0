package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	registryapp "github.com/cementiri/backend/internal/application/registry"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/tests/testutil"
)

// TestTenantIsolation seeds two municipalities and checks that searches and
// lookups never cross the tenant boundary.
func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	tdb := NewSharedTestDB(t)
	svc := registryapp.NewSepulturaService(tdb.Database, tdb.Repos, zap.NewNop())

	orgA := testutil.SeedOrganization(t, ctx, tdb.Repos)
	cemA := testutil.SeedCemetery(t, ctx, tdb.Repos, orgA.ID)
	sepA := testutil.SeedSepultura(t, ctx, tdb.Repos, orgA.ID, cemA.ID, registry.EstadoDisponible)

	orgB := testutil.SeedOrganization(t, ctx, tdb.Repos)
	cemB := testutil.SeedCemetery(t, ctx, tdb.Repos, orgB.ID)
	testutil.SeedSepultura(t, ctx, tdb.Repos, orgB.ID, cemB.ID, registry.EstadoDisponible)
	testutil.SeedSepultura(t, ctx, tdb.Repos, orgB.ID, cemB.ID, registry.EstadoLliure)

	pageA, err := svc.Search(ctx, orgA.ID, registry.SepulturaSearchFilter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pageA.Total)

	pageB, err := svc.Search(ctx, orgB.ID, registry.SepulturaSearchFilter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pageB.Total)

	// Direct lookups across tenants come back as not found.
	_, err = tdb.Repos.Sepulturas.FindByID(ctx, orgB.ID, sepA.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Movimientos(ctx, orgB.ID, sepA.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Person folding search is tenant scoped too.
	testutil.SeedPerson(t, ctx, tdb.Repos, orgA.ID, "Carme", "Bosch")
	persons, err := svc.SearchPersons(ctx, orgB.ID, "bosch", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, persons.Total)
}
