package transfer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCase(t *testing.T, caseType CaseType) *OwnershipTransferCase {
	t.Helper()
	c, err := NewOwnershipTransferCase(uuid.New(), uuid.New(), "TR-2026-0001", caseType)
	require.NoError(t, err)
	return c
}

func advanceTo(t *testing.T, c *OwnershipTransferCase, path ...CaseStatus) {
	t.Helper()
	for _, s := range path {
		require.NoError(t, c.TransitionTo(s))
	}
}

func verifyAllRequired(c *OwnershipTransferCase) {
	for i := range c.Documents {
		if c.Documents[i].Required {
			c.Documents[i].Verify(uuid.New())
		}
	}
}

func addNewHolder(t *testing.T, c *OwnershipTransferCase) {
	t.Helper()
	party, err := NewParty(c.TenantID, c.ID, uuid.New(), RoleNuevoTitular)
	require.NoError(t, err)
	c.Parties = append(c.Parties, *party)
}

func TestCaseStatusTransitions(t *testing.T) {
	cases := []struct {
		from    CaseStatus
		to      CaseStatus
		allowed bool
	}{
		{StatusDraft, StatusDocsPending, true},
		{StatusDraft, StatusApproved, false},
		{StatusDocsPending, StatusUnderReview, true},
		{StatusDocsPending, StatusRejected, true},
		{StatusDocsPending, StatusApproved, false},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusDocsPending, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusRejected, StatusDocsPending, true},
		{StatusRejected, StatusClosed, false},
		{StatusApproved, StatusClosed, true},
		{StatusApproved, StatusDraft, false},
		{StatusClosed, StatusDraft, false},
		{StatusClosed, StatusDocsPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNewCaseSeedsChecklist(t *testing.T) {
	c := newCase(t, MortisCausaTestamento)
	assert.Len(t, c.Documents, 8)

	required := 0
	for _, d := range c.Documents {
		assert.Equal(t, DocumentMissing, d.Status)
		if d.Required {
			required++
		}
	}
	assert.Equal(t, 5, required)
	assert.NotNil(t, c.DocumentByType(DocTestamentoOAceptacion))

	sinTestamento := newCase(t, MortisCausaSinTestamento)
	assert.Nil(t, sinTestamento.DocumentByType(DocTestamentoOAceptacion))
	assert.NotNil(t, sinTestamento.DocumentByType(DocLibroFamiliaOTestigos))
}

func TestCaseReject(t *testing.T) {
	c := newCase(t, InterVivos)
	advanceTo(t, c, StatusDocsPending)

	assert.Error(t, c.Reject("  "))
	require.NoError(t, c.Reject("documentacion incompleta"))
	assert.Equal(t, StatusRejected, c.Status)
	assert.Equal(t, "documentacion incompleta", c.RejectionReason)

	// rejected cases can go back to collecting documents
	require.NoError(t, c.TransitionTo(StatusDocsPending))
}

func TestProvisionalWindow(t *testing.T) {
	c := newCase(t, Provisional)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.StartProvisionalWindow(start))
	require.NotNil(t, c.ProvisionalUntil)
	assert.Equal(t, time.Date(2036, 3, 1, 0, 0, 0, 0, time.UTC), *c.ProvisionalUntil)

	other := newCase(t, InterVivos)
	assert.Error(t, other.StartProvisionalWindow(start))
}

func TestValidateReadyToClose(t *testing.T) {
	t.Run("requires approved status", func(t *testing.T) {
		c := newCase(t, MortisCausaTestamento)
		err := c.ValidateReadyToClose("", false)
		assert.Error(t, err)
	})

	t.Run("requires verified documents", func(t *testing.T) {
		c := newCase(t, MortisCausaTestamento)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		addNewHolder(t, c)
		assert.Error(t, c.ValidateReadyToClose("", false))

		verifyAllRequired(c)
		assert.NoError(t, c.ValidateReadyToClose("", false))
	})

	t.Run("requires new holder party", func(t *testing.T) {
		c := newCase(t, MortisCausaTestamento)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		verifyAllRequired(c)
		assert.Error(t, c.ValidateReadyToClose("", false))
	})

	t.Run("provisional requires BOP plus another channel", func(t *testing.T) {
		c := newCase(t, Provisional)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		verifyAllRequired(c)
		addNewHolder(t, c)

		assert.Error(t, c.ValidateReadyToClose("", false))

		bop, err := NewPublication(c.TenantID, c.ID, time.Now(), "BOP", "BOP-2026-0001")
		require.NoError(t, err)
		c.Publications = append(c.Publications, *bop)
		assert.Error(t, c.ValidateReadyToClose("", false))

		diario, err := NewPublication(c.TenantID, c.ID, time.Now(), "DIARIO", "DIARIO-2026-0001")
		require.NoError(t, err)
		c.Publications = append(c.Publications, *diario)
		assert.NoError(t, c.ValidateReadyToClose("", false))
	})

	t.Run("active beneficiary forces a decision", func(t *testing.T) {
		c := newCase(t, MortisCausaTestamento)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		verifyAllRequired(c)
		addNewHolder(t, c)

		assert.Error(t, c.ValidateReadyToClose("", true))
		assert.NoError(t, c.ValidateReadyToClose(BeneficiaryKeep, true))
	})

	t.Run("replace decision needs its documents verified", func(t *testing.T) {
		c := newCase(t, MortisCausaTestamento)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		verifyAllRequired(c)
		addNewHolder(t, c)

		assert.Error(t, c.ValidateReadyToClose(BeneficiaryReplace, true))

		for _, docType := range BeneficiaryReplaceRequiredDocs {
			c.DocumentByType(docType).Verify(uuid.New())
		}
		assert.NoError(t, c.ValidateReadyToClose(BeneficiaryReplace, true))
	})

	t.Run("inter vivos needs kinship proof", func(t *testing.T) {
		c := newCase(t, InterVivos)
		advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
		verifyAllRequired(c)
		addNewHolder(t, c)

		assert.Error(t, c.ValidateReadyToClose("", false))

		c.DocumentByType(DocAcreditacionParentesco).Verify(uuid.New())
		assert.NoError(t, c.ValidateReadyToClose("", false))
	})
}

func TestMarkClosed(t *testing.T) {
	c := newCase(t, MortisCausaTestamento)
	advanceTo(t, c, StatusDocsPending, StatusUnderReview, StatusApproved)
	require.NoError(t, c.MarkClosed(BeneficiaryKeep))
	assert.Equal(t, StatusClosed, c.Status)
	assert.NotNil(t, c.ClosedAt)
	assert.Equal(t, BeneficiaryKeep, c.BeneficiaryCloseDecision)

	// closed is terminal
	assert.Error(t, c.TransitionTo(StatusDocsPending))
}

func TestCaseDocumentLifecycle(t *testing.T) {
	d := NewCaseDocument(uuid.New(), uuid.New(), DocCertDefuncion, true)
	assert.Equal(t, DocumentMissing, d.Status)

	d.AttachFile("cases/x/documents/1/cert.pdf")
	assert.Equal(t, DocumentProvided, d.Status)
	assert.NotNil(t, d.UploadedAt)

	userID := uuid.New()
	d.Verify(userID)
	assert.Equal(t, DocumentVerified, d.Status)
	assert.Equal(t, &userID, d.VerifiedByUserID)

	d.RejectDocument()
	assert.Equal(t, DocumentRejected, d.Status)
	assert.Nil(t, d.VerifiedAt)
	assert.Nil(t, d.VerifiedByUserID)
}
