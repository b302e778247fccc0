package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/billing"
)

// TicketModel maps the tasa_tickets table. One ticket per contract and year.
type TicketModel struct {
	TenantModel
	ContratoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
	Anio          int             `gorm:"not null;index"`
	Importe       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DescuentoTipo string          `gorm:"size:16;not null"`
	Estado        string          `gorm:"size:16;not null;index"`
}

// TableName returns the table name
func (TicketModel) TableName() string { return "tasa_tickets" }

// FromDomain fills the model from the domain aggregate
func (m *TicketModel) FromDomain(t *billing.TasaMantenimientoTicket) {
	m.TenantModel = tenantModelFrom(t.TenantAggregateRoot)
	m.ContratoID = t.ContratoID
	m.InvoiceID = t.InvoiceID
	m.Anio = t.Anio
	m.Importe = t.Importe
	m.DescuentoTipo = string(t.DescuentoTipo)
	m.Estado = string(t.Estado)
}

// ToDomain reconstructs the domain aggregate
func (m *TicketModel) ToDomain() *billing.TasaMantenimientoTicket {
	return &billing.TasaMantenimientoTicket{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ContratoID:          m.ContratoID,
		InvoiceID:           m.InvoiceID,
		Anio:                m.Anio,
		Importe:             m.Importe,
		DescuentoTipo:       billing.DescuentoTipo(m.DescuentoTipo),
		Estado:              billing.TicketEstado(m.Estado),
	}
}

// InvoiceModel maps the invoices table
type InvoiceModel struct {
	TenantModel
	ContratoID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SepulturaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Numero      string          `gorm:"size:32;not null;index"`
	Estado      string          `gorm:"size:16;not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IssuedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (InvoiceModel) TableName() string { return "invoices" }

// FromDomain fills the model from the domain aggregate
func (m *InvoiceModel) FromDomain(i *billing.Invoice) {
	m.TenantModel = tenantModelFrom(i.TenantAggregateRoot)
	m.ContratoID = i.ContratoID
	m.SepulturaID = i.SepulturaID
	m.Numero = i.Numero
	m.Estado = string(i.Estado)
	m.TotalAmount = i.TotalAmount
	m.IssuedAt = i.IssuedAt
}

// ToDomain reconstructs the domain aggregate
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ContratoID:          m.ContratoID,
		SepulturaID:         m.SepulturaID,
		Numero:              m.Numero,
		Estado:              billing.InvoiceEstado(m.Estado),
		TotalAmount:         m.TotalAmount,
		IssuedAt:            m.IssuedAt,
	}
}

// PaymentModel maps the append-only payments table
type PaymentModel struct {
	TenantModel
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID        *uuid.UUID      `gorm:"type:uuid"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Method        string          `gorm:"size:32;not null"`
	ReceiptNumber string          `gorm:"size:32;not null;index"`
	PaidAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (PaymentModel) TableName() string { return "payments" }

// FromDomain fills the model from the domain entity
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.TenantModel = tenantModelFrom(p.TenantAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.UserID = p.UserID
	m.Amount = p.Amount
	m.Method = p.Method
	m.ReceiptNumber = p.ReceiptNumber
	m.PaidAt = p.PaidAt
}

// ToDomain reconstructs the domain entity
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		InvoiceID:           m.InvoiceID,
		UserID:              m.UserID,
		Amount:              m.Amount,
		Method:              m.Method,
		ReceiptNumber:       m.ReceiptNumber,
		PaidAt:              m.PaidAt,
	}
}
