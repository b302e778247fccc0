package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/billing"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// collectableEstados are ticket states that count as outstanding debt
var collectableEstados = []string{string(billing.TicketPendiente), string(billing.TicketFacturado)}

// GormTicketRepository implements billing.TicketRepository
type GormTicketRepository struct {
	db *Database
}

// NewGormTicketRepository creates the repository
func NewGormTicketRepository(db *Database) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// FindByID loads a ticket
func (r *GormTicketRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.TasaMantenimientoTicket, error) {
	var m models.TicketModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByContractAndYear loads the ticket of a contract for one fee year
func (r *GormTicketRepository) FindByContractAndYear(ctx context.Context, tenantID, contratoID uuid.UUID, anio int) (*billing.TasaMantenimientoTicket, error) {
	var m models.TicketModel
	err := r.db.WithTenant(ctx, tenantID).
		First(&m, "contrato_id = ? AND anio = ?", contratoID, anio).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindOutstandingByContract lists collectable tickets oldest year first
func (r *GormTicketRepository) FindOutstandingByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]billing.TasaMantenimientoTicket, error) {
	var ms []models.TicketModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contrato_id = ? AND estado IN ?", contratoID, collectableEstados).
		Order("anio").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]billing.TasaMantenimientoTicket, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// FindByContract lists every ticket of a contract, oldest year first
func (r *GormTicketRepository) FindByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]billing.TasaMantenimientoTicket, error) {
	var ms []models.TicketModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contrato_id = ?", contratoID).
		Order("anio").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]billing.TasaMantenimientoTicket, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// SumOutstandingByContract totals the collectable tickets of a contract
func (r *GormTicketRepository) SumOutstandingByContract(ctx context.Context, tenantID, contratoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.TicketModel{}).
		Where("contrato_id = ? AND estado IN ?", contratoID, collectableEstados).
		Select("COALESCE(SUM(importe), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// TotalsForYear returns pending and collected totals for a fee year
func (r *GormTicketRepository) TotalsForYear(ctx context.Context, tenantID uuid.UUID, anio int) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Estado string
		Total  decimal.Decimal
	}
	var rows []row
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.TicketModel{}).
		Where("anio = ?", anio).
		Select("estado, COALESCE(SUM(importe), 0) AS total").
		Group("estado").
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	pending, collected := decimal.Zero, decimal.Zero
	for _, rw := range rows {
		switch billing.TicketEstado(rw.Estado) {
		case billing.TicketPendiente, billing.TicketFacturado:
			pending = pending.Add(rw.Total)
		case billing.TicketCobrado:
			collected = collected.Add(rw.Total)
		}
	}
	return pending, collected, nil
}

// Save upserts a ticket
func (r *GormTicketRepository) Save(ctx context.Context, ticket *billing.TasaMantenimientoTicket) error {
	var m models.TicketModel
	m.FromDomain(ticket)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormInvoiceRepository implements billing.InvoiceRepository
type GormInvoiceRepository struct {
	db *Database
}

// NewGormInvoiceRepository creates the repository
func NewGormInvoiceRepository(db *Database) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads an invoice
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByContract lists invoices of a contract newest first
func (r *GormInvoiceRepository) FindByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]billing.Invoice, error) {
	var ms []models.InvoiceModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contrato_id = ?", contratoID).
		Order("issued_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]billing.Invoice, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// CountNumbersLike counts invoice numbers with a prefix, for sequence generation
func (r *GormInvoiceRepository) CountNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.InvoiceModel{}).
		Where("numero LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

// Save upserts an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	var m models.InvoiceModel
	m.FromDomain(invoice)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormPaymentRepository implements billing.PaymentRepository
type GormPaymentRepository struct {
	db *Database
}

// NewGormPaymentRepository creates the repository
func NewGormPaymentRepository(db *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByInvoice lists payments against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var ms []models.PaymentModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]billing.Payment, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// CountReceiptNumbersLike counts receipt numbers with a prefix
func (r *GormPaymentRepository) CountReceiptNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.PaymentModel{}).
		Where("receipt_number LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

// Append inserts a payment. The ledger is append-only.
func (r *GormPaymentRepository) Append(ctx context.Context, payment *billing.Payment) error {
	var m models.PaymentModel
	m.FromDomain(payment)
	return r.db.WithContext(ctx).Create(&m).Error
}
