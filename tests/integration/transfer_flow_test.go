package integration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contractapp "github.com/cementiri/backend/internal/application/contract"
	transferapp "github.com/cementiri/backend/internal/application/transfer"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

type transferFlowSetup struct {
	ctx       context.Context
	tdb       *TestDB
	contracts *contractapp.ContractService
	cases     *transferapp.CaseService
	tenantID  uuid.UUID
	sep       *registry.Sepultura
}

func newTransferFlowSetup(t *testing.T) *transferFlowSetup {
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

	return &transferFlowSetup{
		ctx:       ctx,
		tdb:       tdb,
		contracts: contractapp.NewContractService(tdb.Database, tdb.Repos, bus, docs, renderer, zap.NewNop()),
		cases:     transferapp.NewCaseService(tdb.Database, tdb.Repos, docs, renderer, zap.NewNop()),
		tenantID:  org.ID,
		sep:       sep,
	}
}

// TestInterVivosTransferFlow walks a full holder change against PostgreSQL:
// concession, case with checklist, document review, resolution and close.
func TestInterVivosTransferFlow(t *testing.T) {
	s := newTransferFlowSetup(t)

	c, err := s.contracts.CreateContract(s.ctx, s.tenantID, nil, contractapp.CreateContractInput{
		SepulturaID:     s.sep.ID,
		Tipo:            "CONCESION",
		FechaInicio:     time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		FechaFin:        time.Date(2069, time.December, 31, 0, 0, 0, 0, time.UTC),
		AnnualFeeAmount: decimalFromFloat(30.00),
		Holder:          contractapp.PersonInput{FirstName: "Ramon", LastName: "Serra", DniNif: uniqueDNI()},
	})
	require.NoError(t, err)

	occupied, err := s.tdb.Repos.Sepulturas.FindByID(s.ctx, s.tenantID, s.sep.ID)
	require.NoError(t, err)
	require.Equal(t, registry.EstadoOcupada, occupied.Estado)

	tc, err := s.cases.CreateCase(s.ctx, s.tenantID, nil, transferapp.CreateCaseInput{
		ContractID: c.ID,
		Type:       string(transfer.InterVivos),
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusDocsPending, tc.Status)

	reviewer := testutil.TestUserID()
	for _, docType := range []string{
		transfer.DocSolicitudCambio,
		transfer.DocTituloSepultura,
		transfer.DocDniTitularActual,
		transfer.DocDniNuevoTitular,
		transfer.DocAcreditacionParentesco,
	} {
		_, err := s.cases.UploadDocument(s.ctx, s.tenantID, nil, tc.ID, docType,
			docType+".pdf", "application/pdf", bytes.NewReader([]byte("escanejat")))
		require.NoError(t, err)
		_, err = s.cases.ReviewDocument(s.ctx, s.tenantID, reviewer, tc.ID, docType, true, "")
		require.NoError(t, err)
	}

	newHolder, err := s.cases.AddParty(s.ctx, s.tenantID, tc.ID, transferapp.AddPartyInput{
		Role:      string(transfer.RoleNuevoTitular),
		FirstName: "Mercè",
		LastName:  "Serra",
		DniNif:    uniqueDNI(),
	})
	require.NoError(t, err)

	_, err = s.cases.ChangeStatus(s.ctx, s.tenantID, tc.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	approved, err := s.cases.Approve(s.ctx, s.tenantID, nil, tc.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, approved.ResolutionNumber)

	closed, err := s.cases.CloseCase(s.ctx, s.tenantID, nil, tc.ID, transferapp.CloseCaseInput{})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusClosed, closed.Status)

	active, err := s.tdb.Repos.Ownership.FindActiveByContract(s.ctx, s.tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, newHolder.PersonID, active.PersonID)

	history, err := s.tdb.Repos.Ownership.FindHistoryByContract(s.ctx, s.tenantID, c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	movs, err := s.tdb.Repos.Movimientos.FindBySepultura(s.ctx, s.tenantID, s.sep.ID)
	require.NoError(t, err)
	found := false
	for _, m := range movs {
		if m.Tipo == registry.MovimientoCambioTitularidad {
			found = true
		}
	}
	assert.True(t, found, "expected a CAMBIO_TITULARIDAD movimiento on the grave")
}

// TestCloseWithoutVerifiedDocsFails exercises the close gate on the real schema
func TestCloseWithoutVerifiedDocsFails(t *testing.T) {
	s := newTransferFlowSetup(t)

	c, err := s.contracts.CreateContract(s.ctx, s.tenantID, nil, contractapp.CreateContractInput{
		SepulturaID:     s.sep.ID,
		Tipo:            "CONCESION",
		FechaInicio:     time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		FechaFin:        time.Date(2069, time.December, 31, 0, 0, 0, 0, time.UTC),
		AnnualFeeAmount: decimalFromFloat(30.00),
		Holder:          contractapp.PersonInput{FirstName: "Pau", LastName: "Riera", DniNif: uniqueDNI()},
	})
	require.NoError(t, err)

	tc, err := s.cases.CreateCase(s.ctx, s.tenantID, nil, transferapp.CreateCaseInput{
		ContractID: c.ID,
		Type:       string(transfer.InterVivos),
	})
	require.NoError(t, err)

	_, err = s.cases.AddParty(s.ctx, s.tenantID, tc.ID, transferapp.AddPartyInput{
		Role: string(transfer.RoleNuevoTitular), FirstName: "Clara", LastName: "Riera", DniNif: uniqueDNI(),
	})
	require.NoError(t, err)
	_, err = s.cases.ChangeStatus(s.ctx, s.tenantID, tc.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = s.cases.Approve(s.ctx, s.tenantID, nil, tc.ID)
	require.NoError(t, err)

	_, err = s.cases.CloseCase(s.ctx, s.tenantID, nil, tc.ID, transferapp.CloseCaseInput{})
	require.Error(t, err)

	active, err := s.tdb.Repos.Ownership.FindActiveByContract(s.ctx, s.tenantID, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, transfer.StatusClosed, tc.Status)
	assert.True(t, active.IsActive(), "the original holder slice stays open")
}
