package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketRepository persists maintenance-fee tickets
type TicketRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TasaMantenimientoTicket, error)
	FindByContractAndYear(ctx context.Context, tenantID, contratoID uuid.UUID, anio int) (*TasaMantenimientoTicket, error)
	// FindOutstandingByContract returns collectable tickets ordered by year asc
	FindOutstandingByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]TasaMantenimientoTicket, error)
	FindByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]TasaMantenimientoTicket, error)
	SumOutstandingByContract(ctx context.Context, tenantID, contratoID uuid.UUID) (decimal.Decimal, error)
	TotalsForYear(ctx context.Context, tenantID uuid.UUID, anio int) (pending, collected decimal.Decimal, err error)
	Save(ctx context.Context, ticket *TasaMantenimientoTicket) error
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]Invoice, error)
	CountNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository persists the append-only payment ledger
type PaymentRepository interface {
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	CountReceiptNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
	Append(ctx context.Context, payment *Payment) error
}
