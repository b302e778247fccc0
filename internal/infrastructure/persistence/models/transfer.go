package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/transfer"
)

// TransferCaseModel maps the transfer_cases table
type TransferCaseModel struct {
	TenantModel
	CaseNumber               string     `gorm:"size:32;not null;index"`
	ContractID               uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type                     string     `gorm:"size:32;not null"`
	Status                   string     `gorm:"size:16;not null;index"`
	OpenedAt                 time.Time  `gorm:"not null"`
	ClosedAt                 *time.Time
	AssignedToUserID         *uuid.UUID `gorm:"type:uuid"`
	Notes                    string     `gorm:"type:text"`
	InternalNotes            string     `gorm:"type:text"`
	RejectionReason          string     `gorm:"type:text"`
	ResolutionNumber         string     `gorm:"size:32"`
	ResolutionPDFPath        string     `gorm:"size:512"`
	ProvisionalStartDate     *time.Time `gorm:"type:date"`
	ProvisionalUntil         *time.Time `gorm:"type:date"`
	BeneficiaryCloseDecision string     `gorm:"size:16"`

	Parties      []TransferPartyModel       `gorm:"foreignKey:CaseID"`
	Documents    []TransferDocumentModel    `gorm:"foreignKey:CaseID"`
	Publications []TransferPublicationModel `gorm:"foreignKey:CaseID"`
}

// TableName returns the table name
func (TransferCaseModel) TableName() string { return "transfer_cases" }

// FromDomain fills the model and its children from the domain aggregate
func (m *TransferCaseModel) FromDomain(c *transfer.OwnershipTransferCase) {
	m.TenantModel = tenantModelFrom(c.TenantAggregateRoot)
	m.CaseNumber = c.CaseNumber
	m.ContractID = c.ContractID
	m.Type = string(c.Type)
	m.Status = string(c.Status)
	m.OpenedAt = c.OpenedAt
	m.ClosedAt = c.ClosedAt
	m.AssignedToUserID = c.AssignedToUserID
	m.Notes = c.Notes
	m.InternalNotes = c.InternalNotes
	m.RejectionReason = c.RejectionReason
	m.ResolutionNumber = c.ResolutionNumber
	m.ResolutionPDFPath = c.ResolutionPDFPath
	m.ProvisionalStartDate = c.ProvisionalStartDate
	m.ProvisionalUntil = c.ProvisionalUntil
	m.BeneficiaryCloseDecision = string(c.BeneficiaryCloseDecision)

	m.Parties = make([]TransferPartyModel, len(c.Parties))
	for i := range c.Parties {
		m.Parties[i].FromDomain(&c.Parties[i])
	}
	m.Documents = make([]TransferDocumentModel, len(c.Documents))
	for i := range c.Documents {
		m.Documents[i].FromDomain(&c.Documents[i])
	}
	m.Publications = make([]TransferPublicationModel, len(c.Publications))
	for i := range c.Publications {
		m.Publications[i].FromDomain(&c.Publications[i])
	}
}

// ToDomain reconstructs the aggregate with its children
func (m *TransferCaseModel) ToDomain() *transfer.OwnershipTransferCase {
	c := &transfer.OwnershipTransferCase{
		TenantAggregateRoot:      m.TenantModel.toAggregate(),
		CaseNumber:               m.CaseNumber,
		ContractID:               m.ContractID,
		Type:                     transfer.CaseType(m.Type),
		Status:                   transfer.CaseStatus(m.Status),
		OpenedAt:                 m.OpenedAt,
		ClosedAt:                 m.ClosedAt,
		AssignedToUserID:         m.AssignedToUserID,
		Notes:                    m.Notes,
		InternalNotes:            m.InternalNotes,
		RejectionReason:          m.RejectionReason,
		ResolutionNumber:         m.ResolutionNumber,
		ResolutionPDFPath:        m.ResolutionPDFPath,
		ProvisionalStartDate:     m.ProvisionalStartDate,
		ProvisionalUntil:         m.ProvisionalUntil,
		BeneficiaryCloseDecision: transfer.BeneficiaryCloseDecision(m.BeneficiaryCloseDecision),
	}
	c.Parties = make([]transfer.OwnershipTransferParty, len(m.Parties))
	for i := range m.Parties {
		c.Parties[i] = *m.Parties[i].ToDomain()
	}
	c.Documents = make([]transfer.CaseDocument, len(m.Documents))
	for i := range m.Documents {
		c.Documents[i] = *m.Documents[i].ToDomain()
	}
	c.Publications = make([]transfer.Publication, len(m.Publications))
	for i := range m.Publications {
		c.Publications[i] = *m.Publications[i].ToDomain()
	}
	return c
}

// TransferPartyModel maps the transfer_case_parties table
type TransferPartyModel struct {
	TenantModel
	CaseID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Role       string           `gorm:"size:32;not null"`
	PersonID   uuid.UUID        `gorm:"type:uuid;not null"`
	Percentage *decimal.Decimal `gorm:"type:numeric(5,2)"`
	Notes      string           `gorm:"type:text"`
}

// TableName returns the table name
func (TransferPartyModel) TableName() string { return "transfer_case_parties" }

// FromDomain fills the model from the domain entity
func (m *TransferPartyModel) FromDomain(p *transfer.OwnershipTransferParty) {
	m.TenantModel = tenantModelFrom(p.TenantAggregateRoot)
	m.CaseID = p.CaseID
	m.Role = string(p.Role)
	m.PersonID = p.PersonID
	m.Percentage = p.Percentage
	m.Notes = p.Notes
}

// ToDomain reconstructs the domain entity
func (m *TransferPartyModel) ToDomain() *transfer.OwnershipTransferParty {
	return &transfer.OwnershipTransferParty{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		CaseID:              m.CaseID,
		Role:                transfer.PartyRole(m.Role),
		PersonID:            m.PersonID,
		Percentage:          m.Percentage,
		Notes:               m.Notes,
	}
}

// TransferDocumentModel maps the transfer_case_documents table
type TransferDocumentModel struct {
	TenantModel
	CaseID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocType          string     `gorm:"size:64;not null"`
	Required         bool       `gorm:"not null;default:false"`
	Status           string     `gorm:"size:16;not null"`
	FilePath         string     `gorm:"size:512"`
	UploadedAt       *time.Time
	VerifiedAt       *time.Time
	VerifiedByUserID *uuid.UUID `gorm:"type:uuid"`
	Notes            string     `gorm:"type:text"`
}

// TableName returns the table name
func (TransferDocumentModel) TableName() string { return "transfer_case_documents" }

// FromDomain fills the model from the domain entity
func (m *TransferDocumentModel) FromDomain(d *transfer.CaseDocument) {
	m.TenantModel = tenantModelFrom(d.TenantAggregateRoot)
	m.CaseID = d.CaseID
	m.DocType = d.DocType
	m.Required = d.Required
	m.Status = string(d.Status)
	m.FilePath = d.FilePath
	m.UploadedAt = d.UploadedAt
	m.VerifiedAt = d.VerifiedAt
	m.VerifiedByUserID = d.VerifiedByUserID
	m.Notes = d.Notes
}

// ToDomain reconstructs the domain entity
func (m *TransferDocumentModel) ToDomain() *transfer.CaseDocument {
	return &transfer.CaseDocument{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		CaseID:              m.CaseID,
		DocType:             m.DocType,
		Required:            m.Required,
		Status:              transfer.DocumentStatus(m.Status),
		FilePath:            m.FilePath,
		UploadedAt:          m.UploadedAt,
		VerifiedAt:          m.VerifiedAt,
		VerifiedByUserID:    m.VerifiedByUserID,
		Notes:               m.Notes,
	}
}

// TransferPublicationModel maps the transfer_case_publications table
type TransferPublicationModel struct {
	TenantModel
	CaseID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PublishedAt   time.Time `gorm:"type:date;not null"`
	Channel       string    `gorm:"size:64;not null"`
	ReferenceText string    `gorm:"size:512"`
	Notes         string    `gorm:"type:text"`
}

// TableName returns the table name
func (TransferPublicationModel) TableName() string { return "transfer_case_publications" }

// FromDomain fills the model from the domain entity
func (m *TransferPublicationModel) FromDomain(p *transfer.Publication) {
	m.TenantModel = tenantModelFrom(p.TenantAggregateRoot)
	m.CaseID = p.CaseID
	m.PublishedAt = p.PublishedAt
	m.Channel = p.Channel
	m.ReferenceText = p.ReferenceText
	m.Notes = p.Notes
}

// ToDomain reconstructs the domain entity
func (m *TransferPublicationModel) ToDomain() *transfer.Publication {
	return &transfer.Publication{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		CaseID:              m.CaseID,
		PublishedAt:         m.PublishedAt,
		Channel:             m.Channel,
		ReferenceText:       m.ReferenceText,
		Notes:               m.Notes,
	}
}
