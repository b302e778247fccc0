package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/tests/testutil"
)

type caseFixture struct {
	ctx      context.Context
	svc      *CaseService
	repos    *persistence.Repositories
	tenantID uuid.UUID
	sep      *registry.Sepultura
	contract *contract.DerechoFunerarioContrato
	holder   *registry.Person
}

func newCaseFixture(t *testing.T) *caseFixture {
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
	holder := testutil.SeedPerson(t, ctx, repos, org.ID, "Josep", "Vidal")
	c, _ := testutil.SeedActiveContract(t, ctx, repos, org.ID, sep, holder.ID)

	return &caseFixture{
		ctx:      ctx,
		svc:      NewCaseService(db, repos, docs, renderer, zap.NewNop()),
		repos:    repos,
		tenantID: org.ID,
		sep:      sep,
		contract: c,
		holder:   holder,
	}
}

func (f *caseFixture) openCase(t *testing.T, caseType transfer.CaseType) *transfer.OwnershipTransferCase {
	t.Helper()
	c, err := f.svc.CreateCase(f.ctx, f.tenantID, nil, CreateCaseInput{
		ContractID: f.contract.ID,
		Type:       string(caseType),
	})
	require.NoError(t, err)
	return c
}

// verifyDocs uploads and verifies the given checklist entries.
func (f *caseFixture) verifyDocs(t *testing.T, caseID uuid.UUID, docTypes ...string) {
	t.Helper()
	reviewer := testutil.TestUserID()
	for _, docType := range docTypes {
		_, err := f.svc.UploadDocument(f.ctx, f.tenantID, nil, caseID, docType,
			docType+".pdf", "application/pdf", bytes.NewReader([]byte("stub")))
		require.NoError(t, err)
		_, err = f.svc.ReviewDocument(f.ctx, f.tenantID, reviewer, caseID, docType, true, "")
		require.NoError(t, err)
	}
}

func (f *caseFixture) addNewHolder(t *testing.T, caseID uuid.UUID, dni string) *transfer.OwnershipTransferParty {
	t.Helper()
	party, err := f.svc.AddParty(f.ctx, f.tenantID, caseID, AddPartyInput{
		Role:      string(transfer.RoleNuevoTitular),
		FirstName: "Nou",
		LastName:  "Titular",
		DniNif:    dni,
	})
	require.NoError(t, err)
	return party
}

func TestCreateCaseSeedsChecklistAndParties(t *testing.T) {
	f := newCaseFixture(t)

	c := f.openCase(t, transfer.InterVivos)
	assert.Equal(t, transfer.StatusDocsPending, c.Status)
	assert.Equal(t, fmt.Sprintf("TR-%d-0001", time.Now().Year()), c.CaseNumber)

	reloaded, err := f.svc.GetCase(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Documents, len(transfer.ChecklistFor(transfer.InterVivos)))
	for _, doc := range reloaded.Documents {
		assert.Equal(t, transfer.DocumentMissing, doc.Status)
	}

	anterior := reloaded.PartyByRole(transfer.RoleAnteriorTitular)
	require.NotNil(t, anterior)
	assert.Equal(t, f.holder.ID, anterior.PersonID)
}

func TestCreateCaseRequiresActiveContract(t *testing.T) {
	f := newCaseFixture(t)
	require.NoError(t, f.contract.Extinguish())
	require.NoError(t, f.repos.Contratos.Save(f.ctx, f.contract))

	_, err := f.svc.CreateCase(f.ctx, f.tenantID, nil, CreateCaseInput{
		ContractID: f.contract.ID,
		Type:       string(transfer.InterVivos),
	})
	require.Error(t, err)
}

func TestUploadAndReviewDocument(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	_, err := f.svc.UploadDocument(f.ctx, f.tenantID, nil, c.ID, "NO_SUCH_DOC",
		"x.pdf", "application/pdf", bytes.NewReader([]byte("stub")))
	require.Error(t, err, "documents outside the checklist are rejected")

	doc, err := f.svc.UploadDocument(f.ctx, f.tenantID, nil, c.ID, transfer.DocSolicitudCambio,
		"solicitud.pdf", "application/pdf", bytes.NewReader([]byte("stub")))
	require.NoError(t, err)
	assert.Equal(t, transfer.DocumentProvided, doc.Status)
	assert.NotEmpty(t, doc.FilePath)

	rc, _, err := f.svc.DownloadDocument(f.ctx, f.tenantID, c.ID, transfer.DocSolicitudCambio)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("stub"), content)

	reviewer := testutil.TestUserID()
	doc, err = f.svc.ReviewDocument(f.ctx, f.tenantID, reviewer, c.ID, transfer.DocSolicitudCambio, true, "tot correcte")
	require.NoError(t, err)
	assert.Equal(t, transfer.DocumentVerified, doc.Status)
	require.NotNil(t, doc.VerifiedByUserID)
	assert.Equal(t, reviewer, *doc.VerifiedByUserID)

	doc, err = f.svc.ReviewDocument(f.ctx, f.tenantID, reviewer, c.ID, transfer.DocSolicitudCambio, false, "il·legible")
	require.NoError(t, err)
	assert.Equal(t, transfer.DocumentRejected, doc.Status)
	assert.Nil(t, doc.VerifiedByUserID)
}

func TestReviewMissingDocumentFails(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	_, err := f.svc.ReviewDocument(f.ctx, f.tenantID, testutil.TestUserID(), c.ID,
		transfer.DocSolicitudCambio, true, "")
	require.Error(t, err)
}

func TestChangeStatusRejectsTerminalTargets(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	for _, target := range []string{"APPROVED", "REJECTED", "CLOSED"} {
		_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, target)
		require.Error(t, err, "target %s must use its dedicated operation", target)
	}

	updated, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusUnderReview, updated.Status)
}

func TestApproveAssignsResolutionNumber(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	// Approving straight from DOCS_PENDING is not allowed.
	_, err := f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.Error(t, err)

	_, err = f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	approved, err := f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusApproved, approved.Status)
	assert.Equal(t, fmt.Sprintf("RES-%d-0001", time.Now().Year()), approved.ResolutionNumber)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	_, err := f.svc.Reject(f.ctx, f.tenantID, nil, c.ID, "  ")
	require.Error(t, err)

	rejected, err := f.svc.Reject(f.ctx, f.tenantID, nil, c.ID, "documentació incompleta")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusRejected, rejected.Status)
	assert.Equal(t, "documentació incompleta", rejected.RejectionReason)

	// A rejected case can be reopened for documents.
	reopened, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "DOCS_PENDING")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusDocsPending, reopened.Status)
}

func TestCloseCaseGatesOnVerifiedDocuments(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)
	f.addNewHolder(t, c.ID, "44444444L")

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.Error(t, err, "close must fail while required documents are unverified")
}

func TestCloseInterVivosRewritesHolderLedger(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	f.verifyDocs(t, c.ID,
		transfer.DocSolicitudCambio,
		transfer.DocTituloSepultura,
		transfer.DocDniTitularActual,
		transfer.DocDniNuevoTitular,
		transfer.DocAcreditacionParentesco)
	newHolder := f.addNewHolder(t, c.ID, "44444444L")

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	closed, err := f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	active, err := f.repos.Ownership.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, newHolder.PersonID, active.PersonID)

	history, err := f.repos.Ownership.FindHistoryByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	movs, err := f.repos.Movimientos.FindBySepultura(f.ctx, f.tenantID, f.sep.ID)
	require.NoError(t, err)
	found := false
	for _, m := range movs {
		if m.Tipo == registry.MovimientoCambioTitularidad {
			found = true
		}
	}
	assert.True(t, found, "expected a CAMBIO_TITULARIDAD movimiento")

	// Closed cases are frozen.
	_, err = f.svc.AddParty(f.ctx, f.tenantID, c.ID, AddPartyInput{
		Role: string(transfer.RoleOtro), FirstName: "Algú", DniNif: "55555555M"})
	require.Error(t, err)
}

func TestCloseInterVivosRequiresVerifiedKinshipProof(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	// All required docs verified, but not the second-degree kinship proof.
	f.verifyDocs(t, c.ID,
		transfer.DocSolicitudCambio,
		transfer.DocTituloSepultura,
		transfer.DocDniTitularActual,
		transfer.DocDniNuevoTitular)
	f.addNewHolder(t, c.ID, "44444444L")

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.Error(t, err)
}

func TestCloseMortisCausaConBeneficiarioPromotesBeneficiary(t *testing.T) {
	f := newCaseFixture(t)

	benefPerson := testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Laia", "Mas")
	benef := contract.NewBeneficiario(f.tenantID, f.contract.ID, benefPerson.ID,
		time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.repos.Beneficiarios.Save(f.ctx, benef))

	c := f.openCase(t, transfer.MortisCausaConBeneficiario)
	f.verifyDocs(t, c.ID,
		transfer.DocCertDefuncion,
		transfer.DocTituloSepultura,
		transfer.DocSolicitudCambio,
		transfer.DocDniNuevoTitular)

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	// With an active beneficiary the close needs an explicit decision.
	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.Error(t, err)

	closed, err := f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{Decision: "KEEP"})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusClosed, closed.Status)
	assert.Equal(t, transfer.BeneficiaryKeep, closed.BeneficiaryCloseDecision)

	// The beneficiary was promoted to holder without an explicit party.
	active, err := f.repos.Ownership.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, benefPerson.ID, active.PersonID)

	// KEEP leaves the beneficiary slice open.
	activeBenef, err := f.repos.Beneficiarios.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, benefPerson.ID, activeBenef.PersonID)
}

func TestCreateBeneficiaryRouteRequiresActiveBeneficiary(t *testing.T) {
	f := newCaseFixture(t)

	// No beneficiary on the contract yet.
	_, err := f.svc.CreateCase(f.ctx, f.tenantID, nil, CreateCaseInput{
		ContractID: f.contract.ID,
		Type:       string(transfer.MortisCausaConBeneficiario),
	})
	require.Error(t, err)

	benefPerson := testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Laia", "Mas")
	benef := contract.NewBeneficiario(f.tenantID, f.contract.ID, benefPerson.ID,
		time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.repos.Beneficiarios.Save(f.ctx, benef))

	c := f.openCase(t, transfer.MortisCausaConBeneficiario)
	reloaded, err := f.svc.GetCase(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)

	// The beneficiary arrives pre-seeded as the designated new holder.
	nuevo := reloaded.PartyByRole(transfer.RoleNuevoTitular)
	require.NotNil(t, nuevo)
	assert.Equal(t, benefPerson.ID, nuevo.PersonID)
}

func TestCloseReplaceInsertsNewBeneficiary(t *testing.T) {
	f := newCaseFixture(t)

	oldBenefPerson := testutil.SeedPerson(t, f.ctx, f.repos, f.tenantID, "Laia", "Mas")
	benef := contract.NewBeneficiario(f.tenantID, f.contract.ID, oldBenefPerson.ID,
		time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.repos.Beneficiarios.Save(f.ctx, benef))

	c := f.openCase(t, transfer.MortisCausaConBeneficiario)
	f.verifyDocs(t, c.ID,
		transfer.DocCertDefuncion,
		transfer.DocTituloSepultura,
		transfer.DocSolicitudCambio,
		transfer.DocDniNuevoTitular,
		transfer.DocCesionDerechos,
		transfer.DocSolicitudBeneficiario,
		transfer.DocDniNuevoBeneficiario)

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	// REPLACE without anyone to replace the beneficiary with is rejected.
	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{Decision: "REPLACE"})
	require.Error(t, err)
	activeBenef, err := f.repos.Beneficiarios.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, oldBenefPerson.ID, activeBenef.PersonID, "the old slice stays open on a failed close")

	closed, err := f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{
		Decision: "REPLACE",
		NewBeneficiary: &AddPartyInput{
			FirstName: "Pau",
			LastName:  "Mas",
			DniNif:    "88888888Q",
		},
		Pensioner: true,
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.BeneficiaryReplace, closed.BeneficiaryCloseDecision)

	activeBenef, err = f.repos.Beneficiarios.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	require.NotEqual(t, oldBenefPerson.ID, activeBenef.PersonID)

	history, err := f.repos.Beneficiarios.FindHistoryByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// The pensioner condition from the close payload lands on the new holder.
	active, err := f.repos.Ownership.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.True(t, active.IsPensioner)
	require.NotNil(t, active.PensionerSinceDate)
}

func TestAddPublicationOnlyOnProvisionalCases(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	_, err := f.svc.AddPublication(f.ctx, f.tenantID, c.ID, AddPublicationInput{
		PublishedAt: time.Now(), Channel: "BOP", ReferenceText: "BOP 123/2026"})
	require.Error(t, err)
}

func TestCloseProvisionalRequiresPublications(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.Provisional)
	require.NotNil(t, c.ProvisionalUntil)

	f.verifyDocs(t, c.ID,
		transfer.DocSolicitudCambio,
		transfer.DocAceptacionServicio,
		transfer.DocPublicacionBOP,
		transfer.DocPublicacionDiario)
	newHolder := f.addNewHolder(t, c.ID, "66666666N")

	_, err := f.svc.ChangeStatus(f.ctx, f.tenantID, c.ID, "UNDER_REVIEW")
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.tenantID, nil, c.ID)
	require.NoError(t, err)

	// No publications recorded yet.
	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.Error(t, err)

	_, err = f.svc.AddPublication(f.ctx, f.tenantID, c.ID, AddPublicationInput{
		PublishedAt: time.Now(), Channel: "BOP", ReferenceText: "BOP 123/2026"})
	require.NoError(t, err)

	// BOP alone is not enough.
	_, err = f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.Error(t, err)

	_, err = f.svc.AddPublication(f.ctx, f.tenantID, c.ID, AddPublicationInput{
		PublishedAt: time.Now(), Channel: "DIARIO", ReferenceText: "El Punt 45"})
	require.NoError(t, err)

	closed, err := f.svc.CloseCase(f.ctx, f.tenantID, nil, c.ID, CloseCaseInput{})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusClosed, closed.Status)

	active, err := f.repos.Ownership.FindActiveByContract(f.ctx, f.tenantID, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, newHolder.PersonID, active.PersonID)
	assert.True(t, active.IsProvisional)
	require.NotNil(t, active.ProvisionalUntil)
	assert.Equal(t, c.ProvisionalUntil.Year(), active.ProvisionalUntil.Year())
}

func TestAddPartyReplacesRoleHolder(t *testing.T) {
	f := newCaseFixture(t)
	c := f.openCase(t, transfer.InterVivos)

	first := f.addNewHolder(t, c.ID, "44444444L")
	share := decimal.NewFromInt(50)
	second, err := f.svc.AddParty(f.ctx, f.tenantID, c.ID, AddPartyInput{
		Role:       string(transfer.RoleNuevoTitular),
		FirstName:  "Altre",
		LastName:   "Titular",
		DniNif:     "77777777P",
		Percentage: &share,
		Notes:      "hereu universal",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.PersonID, second.PersonID)

	reloaded, err := f.svc.GetCase(f.ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	holders := 0
	for _, p := range reloaded.Parties {
		if p.Role == transfer.RoleNuevoTitular {
			holders++
			assert.Equal(t, second.PersonID, p.PersonID)
			require.NotNil(t, p.Percentage)
			assert.True(t, p.Percentage.Equal(share))
			assert.Equal(t, "hereu universal", p.Notes)
		}
	}
	assert.Equal(t, 1, holders)
}

func TestStalledCases(t *testing.T) {
	f := newCaseFixture(t)
	f.openCase(t, transfer.InterVivos)

	// A cutoff in the future catches the freshly opened case.
	stalled, err := f.svc.StalledCases(f.ctx, f.tenantID, -1)
	require.NoError(t, err)
	assert.Len(t, stalled, 1)

	stalled, err = f.svc.StalledCases(f.ctx, f.tenantID, 30)
	require.NoError(t, err)
	assert.Empty(t, stalled)
}
