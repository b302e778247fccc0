package handler

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/cementiri/backend/internal/application/billing"
)

// BillingHandler exposes maintenance-fee billing and counter collection
type BillingHandler struct {
	BaseHandler
	svc *appbilling.BillingService
}

// NewBillingHandler creates the handler
func NewBillingHandler(svc *appbilling.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// GenerateTicketsRequest runs the yearly ticket generation
type GenerateTicketsRequest struct {
	Year int `json:"year" binding:"required"`
}

// GenerateTickets godoc
// @Summary  Generate the yearly maintenance-fee tickets
// @Tags     billing
// @Accept   json
// @Produce  json
// @Param    request body GenerateTicketsRequest true "billing year"
// @Success  200 {object} dto.Response
// @Router   /billing/tickets/generate [post]
func (h *BillingHandler) GenerateTickets(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req GenerateTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.svc.GenerateTickets(c.Request.Context(), tenantID, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Outstanding godoc
// @Summary  List the collectable debt of a contract, oldest first
// @Tags     billing
// @Produce  json
// @Param    id path string true "contract id"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/outstanding [get]
func (h *BillingHandler) Outstanding(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	debt, err := h.svc.OutstandingByContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debt)
}

// TicketsByContract godoc
// @Summary  List every maintenance-fee ticket of a contract
// @Tags     billing
// @Produce  json
// @Param    id path string true "contract id"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/tickets [get]
func (h *BillingHandler) TicketsByContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	tickets, err := h.svc.TicketsByContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tickets)
}

// CollectRequest settles tickets at the counter
type CollectRequest struct {
	TicketIDs         []string `json:"ticket_ids" binding:"required,min=1,dive,uuid"`
	DiscountTicketIDs []string `json:"discount_ticket_ids" binding:"omitempty,dive,uuid"`
	Method            string   `json:"method" binding:"required"`
}

// Collect godoc
// @Summary  Collect tickets at the counter and issue invoice and receipt
// @Tags     billing
// @Accept   json
// @Produce  json
// @Param    id path string true "contract id"
// @Param    request body CollectRequest true "ticket selection"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/collect [post]
func (h *BillingHandler) Collect(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ticketIDs := make([]uuid.UUID, len(req.TicketIDs))
	for i, raw := range req.TicketIDs {
		ticketIDs[i] = uuid.MustParse(raw)
	}
	discountIDs := make([]uuid.UUID, len(req.DiscountTicketIDs))
	for i, raw := range req.DiscountTicketIDs {
		discountIDs[i] = uuid.MustParse(raw)
	}
	result, err := h.svc.CollectTickets(c.Request.Context(), tenantID, getUserID(c), id, ticketIDs, discountIDs, req.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	payload := gin.H{
		"invoice": result.Invoice,
		"payment": result.Payment,
	}
	if len(result.ReceiptPDF) > 0 {
		payload["receipt_pdf"] = base64.StdEncoding.EncodeToString(result.ReceiptPDF)
	}
	h.Success(c, payload)
}

// VoidTicket godoc
// @Summary  Void a pending ticket
// @Tags     billing
// @Produce  json
// @Param    id path string true "ticket id"
// @Success  200 {object} dto.Response
// @Router   /billing/tickets/{id}/void [post]
func (h *BillingHandler) VoidTicket(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	ticket, err := h.svc.VoidTicket(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// InvoicesByContract godoc
// @Summary  List the invoices of a contract
// @Tags     billing
// @Produce  json
// @Param    id path string true "contract id"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/invoices [get]
func (h *BillingHandler) InvoicesByContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	invoices, err := h.svc.InvoicesByContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// PaymentsByInvoice godoc
// @Summary  List the payments of an invoice
// @Tags     billing
// @Produce  json
// @Param    id path string true "invoice id"
// @Success  200 {object} dto.Response
// @Router   /billing/invoices/{id}/payments [get]
func (h *BillingHandler) PaymentsByInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid id")
		return
	}
	payments, err := h.svc.PaymentsByInvoice(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
