package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/contract"
)

// ContratoModel maps the contratos table
type ContratoModel struct {
	TenantModel
	SepulturaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo            string          `gorm:"size:32;not null"`
	FechaInicio     time.Time       `gorm:"type:date;not null"`
	FechaFin        time.Time       `gorm:"type:date;not null"`
	Legacy99Years   bool            `gorm:"not null;default:false"`
	AnnualFeeAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Estado          string          `gorm:"size:16;not null;index"`
}

// TableName returns the table name
func (ContratoModel) TableName() string { return "contratos" }

// FromDomain fills the model from the domain aggregate
func (m *ContratoModel) FromDomain(c *contract.DerechoFunerarioContrato) {
	m.TenantModel = tenantModelFrom(c.TenantAggregateRoot)
	m.SepulturaID = c.SepulturaID
	m.Tipo = string(c.Tipo)
	m.FechaInicio = c.FechaInicio
	m.FechaFin = c.FechaFin
	m.Legacy99Years = c.Legacy99Years
	m.AnnualFeeAmount = c.AnnualFeeAmount
	m.Estado = string(c.Estado)
}

// ToDomain reconstructs the domain aggregate
func (m *ContratoModel) ToDomain() *contract.DerechoFunerarioContrato {
	return &contract.DerechoFunerarioContrato{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		SepulturaID:         m.SepulturaID,
		Tipo:                contract.DerechoTipo(m.Tipo),
		FechaInicio:         m.FechaInicio,
		FechaFin:            m.FechaFin,
		Legacy99Years:       m.Legacy99Years,
		AnnualFeeAmount:     m.AnnualFeeAmount,
		Estado:              contract.ContratoEstado(m.Estado),
	}
}

// OwnershipRecordModel maps the titular ledger
type OwnershipRecordModel struct {
	TenantModel
	ContractID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PersonID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate          time.Time  `gorm:"type:date;not null"`
	EndDate            *time.Time `gorm:"type:date"`
	IsPensioner        bool       `gorm:"not null;default:false"`
	PensionerSinceDate *time.Time `gorm:"type:date"`
	IsProvisional      bool       `gorm:"not null;default:false"`
	ProvisionalUntil   *time.Time `gorm:"type:date"`
}

// TableName returns the table name
func (OwnershipRecordModel) TableName() string { return "ownership_records" }

// FromDomain fills the model from the domain entity
func (m *OwnershipRecordModel) FromDomain(r *contract.OwnershipRecord) {
	m.TenantModel = tenantModelFrom(r.TenantAggregateRoot)
	m.ContractID = r.ContractID
	m.PersonID = r.PersonID
	m.StartDate = r.StartDate
	m.EndDate = r.EndDate
	m.IsPensioner = r.IsPensioner
	m.PensionerSinceDate = r.PensionerSinceDate
	m.IsProvisional = r.IsProvisional
	m.ProvisionalUntil = r.ProvisionalUntil
}

// ToDomain reconstructs the domain entity
func (m *OwnershipRecordModel) ToDomain() *contract.OwnershipRecord {
	return &contract.OwnershipRecord{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ContractID:          m.ContractID,
		PersonID:            m.PersonID,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		IsPensioner:         m.IsPensioner,
		PensionerSinceDate:  m.PensionerSinceDate,
		IsProvisional:       m.IsProvisional,
		ProvisionalUntil:    m.ProvisionalUntil,
	}
}

// BeneficiarioModel maps the beneficiary ledger
type BeneficiarioModel struct {
	TenantModel
	ContractID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	PersonID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActivoDesde time.Time  `gorm:"type:date;not null"`
	ActivoHasta *time.Time `gorm:"type:date"`
}

// TableName returns the table name
func (BeneficiarioModel) TableName() string { return "beneficiarios" }

// FromDomain fills the model from the domain entity
func (m *BeneficiarioModel) FromDomain(b *contract.Beneficiario) {
	m.TenantModel = tenantModelFrom(b.TenantAggregateRoot)
	m.ContractID = b.ContractID
	m.PersonID = b.PersonID
	m.ActivoDesde = b.ActivoDesde
	m.ActivoHasta = b.ActivoHasta
}

// ToDomain reconstructs the domain entity
func (m *BeneficiarioModel) ToDomain() *contract.Beneficiario {
	return &contract.Beneficiario{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ContractID:          m.ContractID,
		PersonID:            m.PersonID,
		ActivoDesde:         m.ActivoDesde,
		ActivoHasta:         m.ActivoHasta,
	}
}

// ContractEventModel maps the append-only contract audit trail
type ContractEventModel struct {
	TenantModel
	ContractID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CaseID     *uuid.UUID `gorm:"type:uuid;index"`
	EventType  string     `gorm:"size:32;not null"`
	EventAt    time.Time  `gorm:"not null"`
	Details    string     `gorm:"type:text"`
	UserID     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name
func (ContractEventModel) TableName() string { return "contract_events" }

// FromDomain fills the model from the domain entity
func (m *ContractEventModel) FromDomain(e *contract.ContractEvent) {
	m.TenantModel = tenantModelFrom(e.TenantAggregateRoot)
	m.ContractID = e.ContractID
	m.CaseID = e.CaseID
	m.EventType = e.EventType
	m.EventAt = e.EventAt
	m.Details = e.Details
	m.UserID = e.UserID
}

// ToDomain reconstructs the domain entity
func (m *ContractEventModel) ToDomain() *contract.ContractEvent {
	return &contract.ContractEvent{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ContractID:          m.ContractID,
		CaseID:              m.CaseID,
		EventType:           m.EventType,
		EventAt:             m.EventAt,
		Details:             m.Details,
		UserID:              m.UserID,
	}
}
