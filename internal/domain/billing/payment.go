package billing

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is used when the counter does not specify one
const DefaultPaymentMethod = "EFECTIVO"

// Payment records money received against an invoice, with its receipt number
type Payment struct {
	shared.TenantAggregateRoot
	InvoiceID     uuid.UUID
	UserID        *uuid.UUID
	Amount        decimal.Decimal
	Method        string
	ReceiptNumber string
	PaidAt        time.Time
}

// NewPayment creates a payment dated now
func NewPayment(tenantID, invoiceID uuid.UUID, amount decimal.Decimal, method, receiptNumber string, userID *uuid.UUID) (*Payment, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "receipt number is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "payment amount cannot be negative")
	}
	if method == "" {
		method = DefaultPaymentMethod
	}
	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		UserID:              userID,
		Amount:              amount.Round(2),
		Method:              method,
		ReceiptNumber:       receiptNumber,
		PaidAt:              time.Now().UTC(),
	}, nil
}
