package billing

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceEstado is the payment state of an invoice
type InvoiceEstado string

const (
	InvoicePagada   InvoiceEstado = "PAGADA"
	InvoiceImpagada InvoiceEstado = "IMPAGADA"
	InvoiceAnulada  InvoiceEstado = "ANULADA"
)

// Invoice groups collected maintenance tickets under a sequential number.
// Invoices are only issued at collection time (cash criterion), so they are
// born PAGADA.
type Invoice struct {
	shared.TenantAggregateRoot
	ContratoID  uuid.UUID
	SepulturaID uuid.UUID
	Numero      string
	Estado      InvoiceEstado
	TotalAmount decimal.Decimal
	IssuedAt    time.Time
}

// NewPaidInvoice issues an invoice settled at creation
func NewPaidInvoice(tenantID, contratoID, sepulturaID uuid.UUID, numero string, total decimal.Decimal) (*Invoice, error) {
	if numero == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice number is required")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice total cannot be negative")
	}
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContratoID:          contratoID,
		SepulturaID:         sepulturaID,
		Numero:              numero,
		Estado:              InvoicePagada,
		TotalAmount:         total.Round(2),
		IssuedAt:            time.Now().UTC(),
	}, nil
}
