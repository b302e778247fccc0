package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
)

// CaseService drives the ownership-transfer workflow from opening to the
// ledger rewrite at close.
type CaseService struct {
	db       *persistence.Database
	repos    *persistence.Repositories
	storage  storage.DocumentStorage
	renderer *printing.Renderer
	log      *zap.Logger
}

// NewCaseService creates the service
func NewCaseService(db *persistence.Database, repos *persistence.Repositories, docs storage.DocumentStorage, renderer *printing.Renderer, log *zap.Logger) *CaseService {
	return &CaseService{db: db, repos: repos, storage: docs, renderer: renderer, log: log}
}

// CreateCaseInput opens a new transfer case on a contract
type CreateCaseInput struct {
	ContractID uuid.UUID
	Type       string
	Notes      string
}

// CreateCase opens a case in DOCS_PENDING with its checklist seeded and the
// current holder attached as ANTERIOR_TITULAR.
func (s *CaseService) CreateCase(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateCaseInput) (*transfer.OwnershipTransferCase, error) {
	caseType, err := transfer.ParseCaseType(input.Type)
	if err != nil {
		return nil, err
	}
	contrato, err := s.repos.Contratos.FindByID(ctx, tenantID, input.ContractID)
	if err != nil {
		return nil, err
	}
	if !contrato.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "transfers require an active contract")
	}

	// The beneficiary route only exists when the contract has one; the
	// beneficiary becomes the designated new holder.
	var beneficiary *contract.Beneficiario
	if caseType == transfer.MortisCausaConBeneficiario {
		beneficiary, err = s.repos.Beneficiarios.FindActiveByContract(ctx, tenantID, contrato.ID)
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("INVALID_STATE", "the contract has no active beneficiary")
		}
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	prefix := fmt.Sprintf("TR-%d-", now.Year())
	count, err := s.repos.Cases.CountCaseNumbersLike(ctx, tenantID, prefix)
	if err != nil {
		return nil, err
	}
	caseNumber := fmt.Sprintf("%s%04d", prefix, count+1)

	c, err := transfer.NewOwnershipTransferCase(tenantID, contrato.ID, caseNumber, caseType)
	if err != nil {
		return nil, err
	}
	c.Notes = input.Notes
	if userID != nil {
		c.SetCreatedBy(*userID)
	}
	if caseType == transfer.Provisional {
		if err := c.StartProvisionalWindow(now); err != nil {
			return nil, err
		}
	}
	if err := c.TransitionTo(transfer.StatusDocsPending); err != nil {
		return nil, err
	}

	holder, err := s.repos.Ownership.FindActiveByContract(ctx, tenantID, contrato.ID)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}
	if holder != nil {
		party, err := transfer.NewParty(tenantID, c.ID, holder.PersonID, transfer.RoleAnteriorTitular)
		if err != nil {
			return nil, err
		}
		c.Parties = append(c.Parties, *party)
	}
	if beneficiary != nil {
		party, err := transfer.NewParty(tenantID, c.ID, beneficiary.PersonID, transfer.RoleNuevoTitular)
		if err != nil {
			return nil, err
		}
		c.Parties = append(c.Parties, *party)
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Cases.Save(ctx, c); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, contrato.ID, &c.ID, contract.ContractEventInicioTransmision,
			fmt.Sprintf("Expediente %s (%s)", c.CaseNumber, c.Type), userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, contrato.SepulturaID, registry.MovimientoInicioTransmision,
			fmt.Sprintf("Inicio de transmisión %s", c.CaseNumber), userID))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer case opened",
		zap.String("case_number", c.CaseNumber),
		zap.String("type", string(c.Type)),
		zap.String("tenant_id", tenantID.String()))
	return c, nil
}

// GetCase loads a case with parties, documents and publications
func (s *CaseService) GetCase(ctx context.Context, tenantID, caseID uuid.UUID) (*transfer.OwnershipTransferCase, error) {
	return s.repos.Cases.FindByID(ctx, tenantID, caseID)
}

// ListCases searches cases
func (s *CaseService) ListCases(ctx context.Context, tenantID uuid.UUID, filter transfer.CaseSearchFilter) (shared.Paginated[transfer.OwnershipTransferCase], error) {
	return s.repos.Cases.Search(ctx, tenantID, filter)
}

// AddPartyInput attaches a person to a case
type AddPartyInput struct {
	Role       string
	PersonID   *uuid.UUID
	FirstName  string
	LastName   string
	DniNif     string
	Percentage *decimal.Decimal
	Notes      string
}

// AddParty attaches a person under a role. Persons are matched by DNI/NIF
// when no ID is given; roles other than OTRO replace any existing holder of
// the role.
func (s *CaseService) AddParty(ctx context.Context, tenantID uuid.UUID, caseID uuid.UUID, input AddPartyInput) (*transfer.OwnershipTransferParty, error) {
	role, err := transfer.ParsePartyRole(input.Role)
	if err != nil {
		return nil, err
	}
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == transfer.StatusClosed {
		return nil, shared.NewDomainError("INVALID_STATE", "closed cases cannot be modified")
	}

	personID, err := s.resolvePerson(ctx, s.repos, tenantID, input)
	if err != nil {
		return nil, err
	}
	party, err := transfer.NewParty(tenantID, c.ID, personID, role)
	if err != nil {
		return nil, err
	}
	party.Percentage = input.Percentage
	party.Notes = input.Notes

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if role != transfer.RoleOtro {
			if err := repos.Cases.DeletePartiesByRole(ctx, tenantID, c.ID, role); err != nil {
				return err
			}
		}
		return repos.Cases.SaveParty(ctx, party)
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (s *CaseService) resolvePerson(ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID, input AddPartyInput) (uuid.UUID, error) {
	if input.PersonID != nil {
		p, err := repos.Persons.FindByID(ctx, tenantID, *input.PersonID)
		if err != nil {
			return uuid.Nil, err
		}
		return p.ID, nil
	}
	if input.DniNif != "" {
		if p, err := repos.Persons.FindByDniNif(ctx, tenantID, input.DniNif); err == nil {
			return p.ID, nil
		} else if err != shared.ErrNotFound {
			return uuid.Nil, err
		}
	}
	p, err := registry.NewPerson(tenantID, input.FirstName, input.LastName, input.DniNif)
	if err != nil {
		return uuid.Nil, err
	}
	if err := repos.Persons.Save(ctx, p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// AddPublicationInput records an official announcement
type AddPublicationInput struct {
	PublishedAt   time.Time
	Channel       string
	ReferenceText string
}

// AddPublication records an announcement on the case
func (s *CaseService) AddPublication(ctx context.Context, tenantID, caseID uuid.UUID, input AddPublicationInput) (*transfer.Publication, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == transfer.StatusClosed {
		return nil, shared.NewDomainError("INVALID_STATE", "closed cases cannot be modified")
	}
	if c.Type != transfer.Provisional {
		return nil, shared.NewDomainError("INVALID_STATE", "publications only apply to provisional cases")
	}
	pub, err := transfer.NewPublication(tenantID, c.ID, input.PublishedAt, input.Channel, input.ReferenceText)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Cases.SavePublication(ctx, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

// UploadDocument stores a file and moves the checklist entry to PROVIDED
func (s *CaseService) UploadDocument(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, caseID uuid.UUID, docType, filename, contentType string, body io.Reader) (*transfer.CaseDocument, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == transfer.StatusClosed {
		return nil, shared.NewDomainError("INVALID_STATE", "closed cases cannot be modified")
	}
	doc := c.DocumentByType(docType)
	if doc == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "document type is not on this case's checklist")
	}

	key := fmt.Sprintf("%s/cases/%s/%s/%s", tenantID, c.ID, docType, filename)
	if err := s.storage.Put(ctx, key, body, contentType); err != nil {
		return nil, err
	}
	doc.AttachFile(key)

	contrato, err := s.repos.Contratos.FindByID(ctx, tenantID, c.ContractID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Cases.SaveDocument(ctx, doc); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ContractID, &c.ID, contract.ContractEventDocumentoSubido,
			fmt.Sprintf("%s en expediente %s", docType, c.CaseNumber), userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, contrato.SepulturaID, registry.MovimientoDocumentoSubido,
			fmt.Sprintf("Documento %s subido (%s)", docType, c.CaseNumber), userID))
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DownloadDocument streams a stored case document
func (s *CaseService) DownloadDocument(ctx context.Context, tenantID, caseID uuid.UUID, docType string) (io.ReadCloser, string, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, "", err
	}
	doc := c.DocumentByType(docType)
	if doc == nil || doc.FilePath == "" {
		return nil, "", shared.ErrNotFound
	}
	rc, err := s.storage.Get(ctx, doc.FilePath)
	if err != nil {
		return nil, "", err
	}
	return rc, doc.FilePath, nil
}

// DownloadResolution streams the resolution PDF, re-rendering it when the
// stored file went missing
func (s *CaseService) DownloadResolution(ctx context.Context, tenantID, caseID uuid.UUID) (io.ReadCloser, string, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, "", err
	}
	if c.ResolutionNumber == "" {
		return nil, "", shared.ErrNotFound
	}
	if c.ResolutionPDFPath != "" {
		if rc, err := s.storage.Get(ctx, c.ResolutionPDFPath); err == nil {
			return rc, c.ResolutionPDFPath, nil
		}
	}

	contrato, err := s.repos.Contratos.FindByID(ctx, tenantID, c.ContractID)
	if err != nil {
		return nil, "", err
	}
	if err := s.renderResolution(ctx, tenantID, c, contrato); err != nil {
		return nil, "", err
	}
	if c.ResolutionPDFPath == "" {
		return nil, "", shared.NewDomainError("INVALID_STATE", "pdf rendering is disabled")
	}
	if err := s.repos.Cases.Save(ctx, c); err != nil {
		return nil, "", err
	}
	rc, err := s.storage.Get(ctx, c.ResolutionPDFPath)
	if err != nil {
		return nil, "", err
	}
	return rc, c.ResolutionPDFPath, nil
}

// ReviewDocument verifies or rejects a provided document
func (s *CaseService) ReviewDocument(ctx context.Context, tenantID, userID uuid.UUID, caseID uuid.UUID, docType string, verified bool, notes string) (*transfer.CaseDocument, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	doc := c.DocumentByType(docType)
	if doc == nil {
		return nil, shared.ErrNotFound
	}
	if doc.Status == transfer.DocumentMissing {
		return nil, shared.NewDomainError("INVALID_STATE", "document has not been provided")
	}
	if verified {
		doc.Verify(userID)
	} else {
		doc.RejectDocument()
	}
	doc.Notes = notes
	if err := s.repos.Cases.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ChangeStatus moves the case along the workflow graph. Approve, Reject and
// Close have dedicated entry points.
func (s *CaseService) ChangeStatus(ctx context.Context, tenantID, caseID uuid.UUID, target string) (*transfer.OwnershipTransferCase, error) {
	status, err := transfer.ParseCaseStatus(target)
	if err != nil {
		return nil, err
	}
	switch status {
	case transfer.StatusApproved, transfer.StatusRejected, transfer.StatusClosed:
		return nil, shared.NewDomainError("INVALID_INPUT", "use the dedicated approve, reject or close operation")
	}
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if err := c.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.repos.Cases.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Approve resolves an UNDER_REVIEW case: assigns the resolution number,
// renders the resolution PDF and moves the case to APPROVED.
func (s *CaseService) Approve(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, caseID uuid.UUID) (*transfer.OwnershipTransferCase, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if err := c.TransitionTo(transfer.StatusApproved); err != nil {
		return nil, err
	}

	if c.ResolutionNumber == "" {
		prefix := fmt.Sprintf("RES-%d-", time.Now().Year())
		count, err := s.repos.Cases.CountResolutionNumbersLike(ctx, tenantID, prefix)
		if err != nil {
			return nil, err
		}
		c.ResolutionNumber = fmt.Sprintf("%s%04d", prefix, count+1)
	}

	contrato, err := s.repos.Contratos.FindByID(ctx, tenantID, c.ContractID)
	if err != nil {
		return nil, err
	}
	if err := s.renderResolution(ctx, tenantID, c, contrato); err != nil {
		s.log.Warn("resolution pdf not rendered", zap.String("case_number", c.CaseNumber), zap.Error(err))
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Cases.Save(ctx, c); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ContractID, &c.ID, contract.ContractEventAprobacion,
			fmt.Sprintf("Resolución %s", c.ResolutionNumber), userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, contrato.SepulturaID, registry.MovimientoAprobacion,
			fmt.Sprintf("Expediente %s aprobado (%s)", c.CaseNumber, c.ResolutionNumber), userID))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CaseService) renderResolution(ctx context.Context, tenantID uuid.UUID, c *transfer.OwnershipTransferCase, contrato *contract.DerechoFunerarioContrato) error {
	if s.renderer == nil || !s.renderer.Enabled() {
		return nil
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, contrato.SepulturaID)
	if err != nil {
		return err
	}
	data := printing.ResolucionData{
		OrganizationName: org.Name,
		ResolutionNumber: c.ResolutionNumber,
		CaseNumber:       c.CaseNumber,
		CaseType:         string(c.Type),
		GraveLocation:    sep.LocationLabel(),
		PreviousHolder:   s.partyName(ctx, tenantID, c, transfer.RoleAnteriorTitular),
		NewHolder:        s.partyName(ctx, tenantID, c, transfer.RoleNuevoTitular),
		IssuedAt:         time.Now(),
	}
	pdf, err := s.renderer.RenderResolucion(ctx, data)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s/cases/%s/resoluciones/%s.pdf", tenantID, c.ID, c.ResolutionNumber)
	if err := s.storage.Put(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return err
	}
	c.ResolutionPDFPath = key
	return nil
}

func (s *CaseService) partyName(ctx context.Context, tenantID uuid.UUID, c *transfer.OwnershipTransferCase, role transfer.PartyRole) string {
	party := c.PartyByRole(role)
	if party == nil {
		return ""
	}
	p, err := s.repos.Persons.FindByID(ctx, tenantID, party.PersonID)
	if err != nil {
		return ""
	}
	return p.FullName()
}

// Reject moves the case to REJECTED with a mandatory reason
func (s *CaseService) Reject(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, caseID uuid.UUID, reason string) (*transfer.OwnershipTransferCase, error) {
	c, err := s.repos.Cases.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if err := c.Reject(reason); err != nil {
		return nil, err
	}
	contrato, err := s.repos.Contratos.FindByID(ctx, tenantID, c.ContractID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Cases.Save(ctx, c); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ContractID, &c.ID, contract.ContractEventRechazo, reason, userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, contrato.SepulturaID, registry.MovimientoRechazo,
			fmt.Sprintf("Expediente %s rechazado: %s", c.CaseNumber, reason), userID))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CloseCaseInput carries the closing decision, the replacement beneficiary
// when the decision is REPLACE, and the pensioner condition of the incoming
// holder.
type CloseCaseInput struct {
	Decision       string
	NewBeneficiary *AddPartyInput
	Pensioner      bool
	PensionerSince *time.Time
}

// CloseCase finalizes an APPROVED case: validates every gate, rewrites the
// titular ledger, applies the beneficiary decision and closes the case. The
// whole rewrite runs in one transaction.
func (s *CaseService) CloseCase(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, caseID uuid.UUID, input CloseCaseInput) (*transfer.OwnershipTransferCase, error) {
	decision, err := transfer.ParseBeneficiaryCloseDecision(input.Decision)
	if err != nil {
		return nil, err
	}

	var result *transfer.OwnershipTransferCase
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		c, err := repos.Cases.FindByID(ctx, tenantID, caseID)
		if err != nil {
			return err
		}
		activeBeneficiary, err := repos.Beneficiarios.FindActiveByContract(ctx, tenantID, c.ContractID)
		if err != nil && err != shared.ErrNotFound {
			return err
		}

		// A MORTIS_CAUSA_CON_BENEFICIARIO case without an explicit new holder
		// takes the active beneficiary as NUEVO_TITULAR.
		if c.Type == transfer.MortisCausaConBeneficiario && c.PartyByRole(transfer.RoleNuevoTitular) == nil && activeBeneficiary != nil {
			party, err := transfer.NewParty(tenantID, c.ID, activeBeneficiary.PersonID, transfer.RoleNuevoTitular)
			if err != nil {
				return err
			}
			if err := repos.Cases.SaveParty(ctx, party); err != nil {
				return err
			}
			c.Parties = append(c.Parties, *party)
		}

		if err := c.ValidateReadyToClose(decision, activeBeneficiary != nil); err != nil {
			return err
		}
		newHolder := c.PartyByRole(transfer.RoleNuevoTitular)

		today := time.Now()
		current, err := repos.Ownership.FindActiveByContract(ctx, tenantID, c.ContractID)
		if err != nil && err != shared.ErrNotFound {
			return err
		}
		if current != nil {
			if err := current.Close(today); err != nil {
				return err
			}
			if err := repos.Ownership.Save(ctx, current); err != nil {
				return err
			}
		}

		record := contract.NewOwnershipRecord(tenantID, c.ContractID, newHolder.PersonID, today)
		if input.Pensioner {
			record.SetPensioner(input.PensionerSince)
		}
		if c.Type == transfer.Provisional && c.ProvisionalUntil != nil {
			record.MarkProvisional(*c.ProvisionalUntil)
		}
		if err := repos.Ownership.Save(ctx, record); err != nil {
			return err
		}

		if decision == transfer.BeneficiaryReplace {
			replacementID, err := s.replacementBeneficiary(ctx, repos, tenantID, c, input)
			if err != nil {
				return err
			}
			if activeBeneficiary != nil {
				if err := activeBeneficiary.Close(today); err != nil {
					return err
				}
				if err := repos.Beneficiarios.Save(ctx, activeBeneficiary); err != nil {
					return err
				}
			}
			nuevo := contract.NewBeneficiario(tenantID, c.ContractID, replacementID, today)
			if err := repos.Beneficiarios.Save(ctx, nuevo); err != nil {
				return err
			}
		}

		if err := c.MarkClosed(decision); err != nil {
			return err
		}
		if err := repos.Cases.Save(ctx, c); err != nil {
			return err
		}

		contrato, err := repos.Contratos.FindByID(ctx, tenantID, c.ContractID)
		if err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ContractID, &c.ID, contract.ContractEventCambioTitularidad,
			fmt.Sprintf("Cierre de expediente %s", c.CaseNumber), userID)); err != nil {
			return err
		}
		if err := repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, contrato.SepulturaID, registry.MovimientoCambioTitularidad,
			fmt.Sprintf("Cambio de titularidad (%s)", c.CaseNumber), userID)); err != nil {
			return err
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer case closed",
		zap.String("case_number", result.CaseNumber),
		zap.String("tenant_id", tenantID.String()))
	return result, nil
}

// replacementBeneficiary resolves the person taking over the beneficiary
// slot: the close payload when given, else a BENEFICIARIO party on the case.
func (s *CaseService) replacementBeneficiary(ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID, c *transfer.OwnershipTransferCase, input CloseCaseInput) (uuid.UUID, error) {
	if input.NewBeneficiary != nil {
		return s.resolvePerson(ctx, repos, tenantID, *input.NewBeneficiary)
	}
	if party := c.PartyByRole(transfer.RoleBeneficiario); party != nil {
		return party.PersonID, nil
	}
	return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "a REPLACE decision requires the new beneficiary")
}

// StalledCases lists DOCS_PENDING cases without activity for the given number
// of days, surfaced as panel alerts.
func (s *CaseService) StalledCases(ctx context.Context, tenantID uuid.UUID, days int) ([]transfer.OwnershipTransferCase, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	return s.repos.Cases.FindStalledDocsPending(ctx, tenantID, cutoff)
}
