package billing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/billing"
	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
)

// BillingService runs the yearly maintenance-fee cycle: ticket generation,
// oldest-first counter collection and receipt printing.
type BillingService struct {
	db       *persistence.Database
	repos    *persistence.Repositories
	bus      shared.EventPublisher
	storage  storage.DocumentStorage
	renderer *printing.Renderer
	log      *zap.Logger
}

// NewBillingService creates the service
func NewBillingService(db *persistence.Database, repos *persistence.Repositories, bus shared.EventPublisher, docs storage.DocumentStorage, renderer *printing.Renderer, log *zap.Logger) *BillingService {
	return &BillingService{db: db, repos: repos, bus: bus, storage: docs, renderer: renderer, log: log}
}

// GenerateResult summarizes a yearly ticket generation run
type GenerateResult struct {
	Year      int `json:"year"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Exempt    int `json:"exempt"`
	WithError int `json:"with_error"`
}

// GenerateTickets creates one PENDIENTE ticket per concession contract active
// on January 1st of the given year. Contracts whose grave is PROPIA are
// exempt, and existing tickets for the year are never duplicated, so the run
// is idempotent.
func (s *BillingService) GenerateTickets(ctx context.Context, tenantID uuid.UUID, year int) (*GenerateResult, error) {
	if year < 1900 {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid billing year")
	}
	snapshot := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	contracts, err := s.repos.Contratos.FindActiveConcessionsCovering(ctx, tenantID, snapshot)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Year: year}
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		for i := range contracts {
			c := &contracts[i]

			sep, err := repos.Sepulturas.FindByID(ctx, tenantID, c.SepulturaID)
			if err == shared.ErrNotFound {
				result.WithError++
				continue
			}
			if err != nil {
				return err
			}
			if sep.Estado == registry.EstadoPropia {
				result.Exempt++
				continue
			}
			if _, err := repos.Tickets.FindByContractAndYear(ctx, tenantID, c.ID, year); err == nil {
				result.Skipped++
				continue
			} else if err != shared.ErrNotFound {
				return err
			}

			// The pensioner condition is read from whoever held the
			// contract on the snapshot date, not today's holder.
			importe := c.AnnualFeeAmount
			descuento := billing.DescuentoNone
			if holder, err := repos.Ownership.FindByContractOn(ctx, tenantID, c.ID, snapshot); err == nil {
				if holder.DiscountAppliesForYear(year) {
					importe = billing.ApplyDiscount(importe, org.PensionerDiscountPct)
					descuento = billing.DescuentoPensionista
				}
			} else if err != shared.ErrNotFound {
				return err
			}

			ticket, err := billing.NewTicket(tenantID, c.ID, year, importe, descuento)
			if err != nil {
				result.WithError++
				continue
			}
			if err := repos.Tickets.Save(ctx, ticket); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("generated maintenance tickets",
		zap.Int("year", year),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("exempt", result.Exempt),
		zap.Int("with_error", result.WithError),
		zap.String("tenant_id", tenantID.String()))
	return result, nil
}

// ContractDebt is the outstanding position of a contract
type ContractDebt struct {
	Tickets []billing.TasaMantenimientoTicket `json:"tickets"`
	Total   decimal.Decimal                   `json:"total"`
}

// OutstandingByContract lists collectable tickets oldest first with the total
func (s *BillingService) OutstandingByContract(ctx context.Context, tenantID, contratoID uuid.UUID) (*ContractDebt, error) {
	if _, err := s.repos.Contratos.FindByID(ctx, tenantID, contratoID); err != nil {
		return nil, err
	}
	tickets, err := s.repos.Tickets.FindOutstandingByContract(ctx, tenantID, contratoID)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Tickets.SumOutstandingByContract(ctx, tenantID, contratoID)
	if err != nil {
		return nil, err
	}
	return &ContractDebt{Tickets: tickets, Total: total}, nil
}

// TicketsByContract lists every ticket of a contract
func (s *BillingService) TicketsByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]billing.TasaMantenimientoTicket, error) {
	return s.repos.Tickets.FindByContract(ctx, tenantID, contratoID)
}

// CollectResult is the outcome of a counter collection
type CollectResult struct {
	Invoice    *billing.Invoice `json:"invoice"`
	Payment    *billing.Payment `json:"payment"`
	ReceiptPDF []byte           `json:"-"`
}

// CollectTickets settles the selected tickets at the counter. The selection
// must be the oldest outstanding years without gaps. One PAGADA invoice and
// one receipt are issued, amounts are recomputed against the holder's current
// pensioner condition, and the TASAS movement is written, all atomically.
// Tickets listed in discountTicketIDs get the pensioner discount regardless
// of the since-year rule, covering years granted at the counter.
func (s *BillingService) CollectTickets(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contratoID uuid.UUID, ticketIDs, discountTicketIDs []uuid.UUID, method string) (*CollectResult, error) {
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contratoID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &CollectResult{}
	var collected []billing.TasaMantenimientoTicket
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		outstanding, err := repos.Tickets.FindOutstandingByContract(ctx, tenantID, c.ID)
		if err != nil {
			return err
		}
		if err := billing.ValidateOldestPrefixSelection(outstanding, ticketIDs); err != nil {
			return err
		}

		var holder *contract.OwnershipRecord
		if h, err := repos.Ownership.FindActiveByContract(ctx, tenantID, c.ID); err == nil {
			holder = h
		} else if err != shared.ErrNotFound {
			return err
		}

		explicitDiscount := make(map[uuid.UUID]bool, len(discountTicketIDs))
		for _, id := range discountTicketIDs {
			explicitDiscount[id] = true
		}

		total := decimal.Zero
		selection := outstanding[:len(ticketIDs)]
		finals := make([]decimal.Decimal, len(selection))
		descuentos := make([]billing.DescuentoTipo, len(selection))
		for i := range selection {
			amount := c.AnnualFeeAmount
			descuento := billing.DescuentoNone
			byHolder := holder != nil && holder.DiscountAppliesForYear(selection[i].Anio)
			if byHolder || explicitDiscount[selection[i].ID] {
				amount = billing.ApplyDiscount(amount, org.PensionerDiscountPct)
				descuento = billing.DescuentoPensionista
			}
			finals[i] = amount
			descuentos[i] = descuento
			total = total.Add(amount)
		}

		year := time.Now().Year()
		invoicePrefix := fmt.Sprintf("F-CEM-%d-", year)
		invoiceCount, err := repos.Invoices.CountNumbersLike(ctx, tenantID, invoicePrefix)
		if err != nil {
			return err
		}
		invoice, err := billing.NewPaidInvoice(tenantID, c.ID, c.SepulturaID,
			fmt.Sprintf("%s%04d", invoicePrefix, invoiceCount+1), total)
		if err != nil {
			return err
		}
		if userID != nil {
			invoice.SetCreatedBy(*userID)
		}
		if err := repos.Invoices.Save(ctx, invoice); err != nil {
			return err
		}

		receiptPrefix := fmt.Sprintf("R-CEM-%d-", year)
		receiptCount, err := repos.Payments.CountReceiptNumbersLike(ctx, tenantID, receiptPrefix)
		if err != nil {
			return err
		}
		payment, err := billing.NewPayment(tenantID, invoice.ID, total, method,
			fmt.Sprintf("%s%04d", receiptPrefix, receiptCount+1), userID)
		if err != nil {
			return err
		}
		if err := repos.Payments.Append(ctx, payment); err != nil {
			return err
		}

		for i := range selection {
			t := selection[i]
			if err := t.MarkCobrado(invoice.ID, finals[i], descuentos[i]); err != nil {
				return err
			}
			if err := repos.Tickets.Save(ctx, &t); err != nil {
				return err
			}
			collected = append(collected, t)
		}

		result.Invoice = invoice
		result.Payment = payment
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, c.SepulturaID, registry.MovimientoTasas,
			fmt.Sprintf("Cobro de %d tasas, recibo %s", len(selection), payment.ReceiptNumber), userID))
	})
	if err != nil {
		return nil, err
	}

	for i := range collected {
		if err := s.bus.Publish(ctx, collected[i].GetDomainEvents()...); err != nil {
			s.log.Warn("failed to publish ticket events", zap.Error(err))
		}
	}
	if pdf, err := s.renderReceipt(ctx, tenantID, c, result, collected); err != nil {
		s.log.Warn("failed to render receipt pdf",
			zap.String("receipt", result.Payment.ReceiptNumber), zap.Error(err))
	} else {
		result.ReceiptPDF = pdf
	}
	return result, nil
}

func (s *BillingService) renderReceipt(ctx context.Context, tenantID uuid.UUID, c *contract.DerechoFunerarioContrato, result *CollectResult, collected []billing.TasaMantenimientoTicket) ([]byte, error) {
	if s.renderer == nil || !s.renderer.Enabled() {
		return nil, nil
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, c.SepulturaID)
	if err != nil {
		return nil, err
	}
	holderName := ""
	if holder, err := s.repos.Ownership.FindActiveByContract(ctx, tenantID, c.ID); err == nil {
		if p, err := s.repos.Persons.FindByID(ctx, tenantID, holder.PersonID); err == nil {
			holderName = p.FullName()
		}
	}

	lines := make([]printing.ReciboLine, 0, len(collected))
	for i := range collected {
		line := printing.ReciboLine{
			Anio:    collected[i].Anio,
			Importe: collected[i].Importe.StringFixed(2),
		}
		if collected[i].DescuentoTipo == billing.DescuentoPensionista {
			line.Descuento = string(billing.DescuentoPensionista)
		}
		lines = append(lines, line)
	}

	pdf, err := s.renderer.RenderRecibo(ctx, printing.ReciboData{
		OrganizationName: org.Name,
		ReceiptNumber:    result.Payment.ReceiptNumber,
		InvoiceNumber:    result.Invoice.Numero,
		GraveLocation:    sep.LocationLabel(),
		HolderName:       holderName,
		Lines:            lines,
		Total:            result.Invoice.TotalAmount.StringFixed(2),
		Method:           result.Payment.Method,
		PaidAt:           result.Payment.PaidAt,
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/receipts/%s.pdf", tenantID, result.Payment.ReceiptNumber)
	if err := s.storage.Put(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return nil, err
	}
	return pdf, nil
}

// VoidTicket voids a pending or invoiced ticket
func (s *BillingService) VoidTicket(ctx context.Context, tenantID uuid.UUID, ticketID uuid.UUID) (*billing.TasaMantenimientoTicket, error) {
	t, err := s.repos.Tickets.FindByID(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := t.Anular(); err != nil {
		return nil, err
	}
	if err := s.repos.Tickets.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// InvoicesByContract lists the invoices issued for a contract
func (s *BillingService) InvoicesByContract(ctx context.Context, tenantID, contratoID uuid.UUID) ([]billing.Invoice, error) {
	return s.repos.Invoices.FindByContract(ctx, tenantID, contratoID)
}

// PaymentsByInvoice lists the payments of an invoice
func (s *BillingService) PaymentsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	return s.repos.Payments.FindByInvoice(ctx, tenantID, invoiceID)
}
