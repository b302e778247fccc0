package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/identity"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
)

var seedCounter atomic.Int64

func nextSeq() int {
	return int(seedCounter.Add(1))
}

// SeedOrganization creates an organization. Its ID is the tenant ID for every
// other fixture.
func SeedOrganization(t *testing.T, ctx context.Context, repos *persistence.Repositories) *identity.Organization {
	t.Helper()
	org, err := identity.NewOrganization(fmt.Sprintf("MUN-%03d", nextSeq()), "Ajuntament de Prova")
	require.NoError(t, err)
	require.NoError(t, repos.Organizations.Save(ctx, org))
	return org
}

// SeedCemetery creates a cemetery for the tenant.
func SeedCemetery(t *testing.T, ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID) *registry.Cemetery {
	t.Helper()
	cem, err := registry.NewCemetery(tenantID, "Cementiri Vell", "Vilanova")
	require.NoError(t, err)
	require.NoError(t, repos.Cemeteries.Save(ctx, cem))
	return cem
}

// SeedSepultura creates a grave in the given state at a unique location.
func SeedSepultura(t *testing.T, ctx context.Context, repos *persistence.Repositories, tenantID, cemeteryID uuid.UUID, estado registry.SepulturaEstado) *registry.Sepultura {
	t.Helper()
	n := nextSeq()
	sep, err := registry.NewSepultura(tenantID, cemeteryID, "A", 1, 1, n, estado)
	require.NoError(t, err)
	require.NoError(t, repos.Sepulturas.Save(ctx, sep))
	return sep
}

// SeedPerson creates a person with a unique DNI.
func SeedPerson(t *testing.T, ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID, firstName, lastName string) *registry.Person {
	t.Helper()
	p, err := registry.NewPerson(tenantID, firstName, lastName, fmt.Sprintf("%08dZ", nextSeq()))
	require.NoError(t, err)
	require.NoError(t, repos.Persons.Save(ctx, p))
	return p
}

// SeedActiveContract creates an ACTIVO concession over the grave with an open
// holder slice and marks the grave occupied. The term runs 2020 through 2069
// with a 30.00 annual fee.
func SeedActiveContract(t *testing.T, ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID, sep *registry.Sepultura, holderID uuid.UUID) (*contract.DerechoFunerarioContrato, *contract.OwnershipRecord) {
	t.Helper()
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2069, time.December, 31, 0, 0, 0, 0, time.UTC)

	c, err := contract.NewDerechoFunerarioContrato(tenantID, sep.ID,
		contract.DerechoConcesion, start, end, false, decimal.NewFromFloat(30.00))
	require.NoError(t, err)
	c.ClearDomainEvents()
	require.NoError(t, repos.Contratos.Save(ctx, c))

	if sep.Estado != registry.EstadoOcupada {
		require.NoError(t, sep.Occupy())
		sep.ClearDomainEvents()
		require.NoError(t, repos.Sepulturas.Save(ctx, sep))
	}

	record := contract.NewOwnershipRecord(tenantID, c.ID, holderID, start)
	require.NoError(t, repos.Ownership.Save(ctx, record))
	return c, record
}
