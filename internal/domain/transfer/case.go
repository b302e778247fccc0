package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CaseType is the legal modality of an ownership transfer
type CaseType string

const (
	MortisCausaTestamento      CaseType = "MORTIS_CAUSA_TESTAMENTO"
	MortisCausaSinTestamento   CaseType = "MORTIS_CAUSA_SIN_TESTAMENTO"
	MortisCausaConBeneficiario CaseType = "MORTIS_CAUSA_CON_BENEFICIARIO"
	InterVivos                 CaseType = "INTER_VIVOS"
	Provisional                CaseType = "PROVISIONAL"
)

// IsValid checks if the case type is a known value
func (t CaseType) IsValid() bool {
	switch t {
	case MortisCausaTestamento, MortisCausaSinTestamento, MortisCausaConBeneficiario, InterVivos, Provisional:
		return true
	}
	return false
}

// ParseCaseType parses a raw case type string
func ParseCaseType(raw string) (CaseType, error) {
	t := CaseType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid transfer case type")
	}
	return t, nil
}

// CaseStatus is the workflow status of a transfer case
type CaseStatus string

const (
	StatusDraft       CaseStatus = "DRAFT"
	StatusDocsPending CaseStatus = "DOCS_PENDING"
	StatusUnderReview CaseStatus = "UNDER_REVIEW"
	StatusApproved    CaseStatus = "APPROVED"
	StatusRejected    CaseStatus = "REJECTED"
	StatusClosed      CaseStatus = "CLOSED"
)

// IsValid checks if the status is a known value
func (s CaseStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusDocsPending, StatusUnderReview, StatusApproved, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// ParseCaseStatus parses a raw case status string
func ParseCaseStatus(raw string) (CaseStatus, error) {
	s := CaseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid transfer case status")
	}
	return s, nil
}

// caseTransitions is the allowed status graph. CLOSED is terminal.
var caseTransitions = map[CaseStatus][]CaseStatus{
	StatusDraft:       {StatusDocsPending},
	StatusDocsPending: {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusDocsPending, StatusApproved, StatusRejected},
	StatusRejected:    {StatusDocsPending},
	StatusApproved:    {StatusClosed},
	StatusClosed:      {},
}

// CanTransitionTo reports whether the status graph allows the move
func (s CaseStatus) CanTransitionTo(target CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// BeneficiaryCloseDecision says what happens to the active beneficiary when a
// case closes
type BeneficiaryCloseDecision string

const (
	BeneficiaryKeep    BeneficiaryCloseDecision = "KEEP"
	BeneficiaryReplace BeneficiaryCloseDecision = "REPLACE"
)

// ParseBeneficiaryCloseDecision parses a raw decision string; empty stays empty
func ParseBeneficiaryCloseDecision(raw string) (BeneficiaryCloseDecision, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	d := BeneficiaryCloseDecision(raw)
	if d != BeneficiaryKeep && d != BeneficiaryReplace {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid beneficiary close decision")
	}
	return d, nil
}

// ProvisionalYears is the duration of a provisional ownership window
const ProvisionalYears = 10

// OwnershipTransferCase tracks a change of funeral-right holder from request
// to resolution. Documents, parties and publications hang off the case; the
// close step rewrites the ownership ledger.
type OwnershipTransferCase struct {
	shared.TenantAggregateRoot
	CaseNumber               string
	ContractID               uuid.UUID
	Type                     CaseType
	Status                   CaseStatus
	OpenedAt                 time.Time
	ClosedAt                 *time.Time
	AssignedToUserID         *uuid.UUID
	Notes                    string
	InternalNotes            string
	RejectionReason          string
	ResolutionNumber         string
	ResolutionPDFPath        string
	ProvisionalStartDate     *time.Time
	ProvisionalUntil         *time.Time
	BeneficiaryCloseDecision BeneficiaryCloseDecision

	Parties      []OwnershipTransferParty
	Documents    []CaseDocument
	Publications []Publication
}

// NewOwnershipTransferCase opens a case in DRAFT with its document checklist
func NewOwnershipTransferCase(tenantID, contractID uuid.UUID, caseNumber string, caseType CaseType) (*OwnershipTransferCase, error) {
	if !caseType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid transfer case type")
	}
	if caseNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "case number is required")
	}
	c := &OwnershipTransferCase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CaseNumber:          caseNumber,
		ContractID:          contractID,
		Type:                caseType,
		Status:              StatusDraft,
		OpenedAt:            time.Now().UTC(),
	}
	c.seedChecklist()
	return c, nil
}

// seedChecklist creates the MISSING documents required for the case type
func (c *OwnershipTransferCase) seedChecklist() {
	for _, item := range ChecklistFor(c.Type) {
		c.Documents = append(c.Documents, *NewCaseDocument(c.TenantID, c.ID, item.DocType, item.Required))
	}
}

// StartProvisionalWindow sets the provisional ownership period
func (c *OwnershipTransferCase) StartProvisionalWindow(start time.Time) error {
	if c.Type != Provisional {
		return shared.NewDomainError("INVALID_STATE", "only provisional cases have a provisional window")
	}
	s := shared.DateOnly(start)
	until := shared.AddYears(s, ProvisionalYears)
	c.ProvisionalStartDate = &s
	c.ProvisionalUntil = &until
	return nil
}

// TransitionTo moves the case along the status graph
func (c *OwnershipTransferCase) TransitionTo(target CaseStatus) error {
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("transition %s -> %s is not allowed", c.Status, target))
	}
	c.Status = target
	return nil
}

// Reject transitions to REJECTED with a mandatory reason
func (c *OwnershipTransferCase) Reject(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "rejection reason is required")
	}
	if err := c.TransitionTo(StatusRejected); err != nil {
		return err
	}
	c.RejectionReason = reason
	return nil
}

// PartyByRole returns the party holding a role, or nil
func (c *OwnershipTransferCase) PartyByRole(role PartyRole) *OwnershipTransferParty {
	for i := range c.Parties {
		if c.Parties[i].Role == role {
			return &c.Parties[i]
		}
	}
	return nil
}

// DocumentByType returns the checklist entry for a document type, or nil
func (c *OwnershipTransferCase) DocumentByType(docType string) *CaseDocument {
	for i := range c.Documents {
		if c.Documents[i].DocType == docType {
			return &c.Documents[i]
		}
	}
	return nil
}

// PendingRequiredDocuments returns required documents not yet verified
func (c *OwnershipTransferCase) PendingRequiredDocuments() []CaseDocument {
	var pending []CaseDocument
	for _, d := range c.Documents {
		if d.Required && d.Status != DocumentVerified {
			pending = append(pending, d)
		}
	}
	return pending
}

// ValidateReadyToClose enforces every gate on the closing transaction:
// approved status, verified required documents, a NUEVO_TITULAR party,
// provisional publications, inter-vivos kinship proof and beneficiary
// replacement documents.
func (c *OwnershipTransferCase) ValidateReadyToClose(decision BeneficiaryCloseDecision, hasActiveBeneficiary bool) error {
	if c.Status != StatusApproved {
		return shared.NewDomainError("INVALID_STATE", "only APPROVED cases can be closed")
	}
	if len(c.PendingRequiredDocuments()) > 0 {
		return shared.NewDomainError("DOCUMENTS_PENDING", "required documents are not verified")
	}
	if c.PartyByRole(RoleNuevoTitular) == nil {
		return shared.NewDomainError("INVALID_STATE", "a NUEVO_TITULAR party is required")
	}
	if c.Type == Provisional {
		hasBOP := false
		hasOther := false
		for _, pub := range c.Publications {
			if strings.EqualFold(pub.Channel, ChannelBOP) {
				hasBOP = true
			} else {
				hasOther = true
			}
		}
		if !hasBOP || !hasOther {
			return shared.NewDomainError("INVALID_STATE", "provisional cases require publication in BOP and another channel")
		}
	}
	if hasActiveBeneficiary && decision == "" {
		return shared.NewDomainError("INVALID_INPUT", "a beneficiary decision (KEEP or REPLACE) is required")
	}
	if decision == BeneficiaryReplace {
		for _, docType := range BeneficiaryReplaceRequiredDocs {
			doc := c.DocumentByType(docType)
			if doc == nil || doc.Status != DocumentVerified {
				return shared.NewDomainError("DOCUMENTS_PENDING", "beneficiary replacement documents are not verified")
			}
		}
	}
	if c.Type == InterVivos {
		doc := c.DocumentByType(DocAcreditacionParentesco)
		if doc == nil || doc.Status != DocumentVerified {
			return shared.NewDomainError("DOCUMENTS_PENDING", "inter-vivos transfers require verified second-degree kinship proof")
		}
	}
	return nil
}

// MarkClosed finalizes the case after the ledger has been rewritten
func (c *OwnershipTransferCase) MarkClosed(decision BeneficiaryCloseDecision) error {
	if err := c.TransitionTo(StatusClosed); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.ClosedAt = &now
	if decision != "" {
		c.BeneficiaryCloseDecision = decision
	}
	return nil
}
