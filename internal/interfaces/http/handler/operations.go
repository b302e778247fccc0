package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appoperations "github.com/cementiri/backend/internal/application/operations"
	"github.com/cementiri/backend/internal/domain/shared"
)

// OperationsHandler exposes expedientes, work orders, gravestone stock and
// lateral inscriptions
type OperationsHandler struct {
	BaseHandler
	svc *appoperations.OperationsService
}

// NewOperationsHandler creates the handler
func NewOperationsHandler(svc *appoperations.OperationsService) *OperationsHandler {
	return &OperationsHandler{svc: svc}
}

// CreateExpedienteRequest opens an operational dossier
type CreateExpedienteRequest struct {
	Tipo               string `json:"tipo" binding:"required"`
	SepulturaID        string `json:"sepultura_id" binding:"omitempty,uuid"`
	DeclarantePersonID string `json:"declarante_person_id" binding:"omitempty,uuid"`
	FechaServicio      string `json:"fecha_servicio"`
	Notes              string `json:"notes"`
}

// CreateExpediente godoc
// @Summary  Open an expediente
// @Tags     operations
// @Accept   json
// @Produce  json
// @Param    request body CreateExpedienteRequest true "expediente"
// @Success  201 {object} dto.Response
// @Router   /expedientes [post]
func (h *OperationsHandler) CreateExpediente(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateExpedienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	input := appoperations.CreateExpedienteInput{
		Tipo:  req.Tipo,
		Notes: req.Notes,
	}
	if req.SepulturaID != "" {
		id := uuid.MustParse(req.SepulturaID)
		input.SepulturaID = &id
	}
	if req.DeclarantePersonID != "" {
		id := uuid.MustParse(req.DeclarantePersonID)
		input.DeclarantePersonID = &id
	}
	if req.FechaServicio != "" {
		d, err := time.Parse("2006-01-02", req.FechaServicio)
		if err != nil {
			h.BadRequest(c, "invalid fecha_servicio, expected YYYY-MM-DD")
			return
		}
		input.FechaServicio = &d
	}
	exp, err := h.svc.CreateExpediente(c.Request.Context(), tenantID, getUserID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, exp)
}

// GetExpediente godoc
// @Summary  Get an expediente
// @Tags     operations
// @Produce  json
// @Param    id path string true "expediente id"
// @Success  200 {object} dto.Response
// @Router   /expedientes/{id} [get]
func (h *OperationsHandler) GetExpediente(c *gin.Context) {
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
	exp, err := h.svc.GetExpediente(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exp)
}

// ListExpedientes godoc
// @Summary  List expedientes
// @Tags     operations
// @Produce  json
// @Param    page query int false "page"
// @Param    page_size query int false "page size"
// @Success  200 {object} dto.Response
// @Router   /expedientes [get]
func (h *OperationsHandler) ListExpedientes(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	filter := listFilter(c)
	result, err := h.svc.ListExpedientes(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ChangeEstadoRequest moves a dossier or inscription to a new state
type ChangeEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// ChangeExpedienteEstado godoc
// @Summary  Change the expediente state
// @Tags     operations
// @Accept   json
// @Produce  json
// @Param    id path string true "expediente id"
// @Param    request body ChangeEstadoRequest true "target state"
// @Success  200 {object} dto.Response
// @Router   /expedientes/{id}/estado [put]
func (h *OperationsHandler) ChangeExpedienteEstado(c *gin.Context) {
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
	var req ChangeEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	exp, err := h.svc.ChangeExpedienteEstado(c.Request.Context(), tenantID, getUserID(c), id, req.Estado)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exp)
}

// CreateOrdenRequest raises a work order on an expediente
type CreateOrdenRequest struct {
	Descripcion string `json:"descripcion" binding:"required"`
}

// CreateOrdenTrabajo godoc
// @Summary  Raise a work order on an expediente
// @Tags     operations
// @Accept   json
// @Produce  json
// @Param    id path string true "expediente id"
// @Param    request body CreateOrdenRequest true "work order"
// @Success  201 {object} dto.Response
// @Router   /expedientes/{id}/ordenes [post]
func (h *OperationsHandler) CreateOrdenTrabajo(c *gin.Context) {
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
	var req CreateOrdenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	orden, err := h.svc.CreateOrdenTrabajo(c.Request.Context(), tenantID, getUserID(c), id, req.Descripcion)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, orden)
}

// OrdenesByExpediente godoc
// @Summary  List the work orders of an expediente
// @Tags     operations
// @Produce  json
// @Param    id path string true "expediente id"
// @Success  200 {object} dto.Response
// @Router   /expedientes/{id}/ordenes [get]
func (h *OperationsHandler) OrdenesByExpediente(c *gin.Context) {
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
	ordenes, err := h.svc.OrdenesByExpediente(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ordenes)
}

// CompleteOrdenTrabajo godoc
// @Summary  Mark a work order as done
// @Tags     operations
// @Produce  json
// @Param    id path string true "work order id"
// @Success  200 {object} dto.Response
// @Router   /ordenes/{id}/complete [post]
func (h *OperationsHandler) CompleteOrdenTrabajo(c *gin.Context) {
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
	orden, err := h.svc.CompleteOrdenTrabajo(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orden)
}

// PrintOrdenTrabajo godoc
// @Summary  Render the printable work order PDF
// @Tags     operations
// @Produce  application/pdf
// @Param    id path string true "work order id"
// @Success  200 {file} binary
// @Router   /ordenes/{id}/print [get]
func (h *OperationsHandler) PrintOrdenTrabajo(c *gin.Context) {
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
	pdf, err := h.svc.PrintOrdenTrabajo(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(200, "application/pdf", pdf)
}

// StockMovementRequest records a gravestone stock entry or exit
type StockMovementRequest struct {
	Codigo       string `json:"codigo" binding:"required"`
	Descripcion  string `json:"descripcion"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	SepulturaID  string `json:"sepultura_id" binding:"omitempty,uuid"`
	ExpedienteID string `json:"expediente_id" binding:"omitempty,uuid"`
	Notes        string `json:"notes"`
}

func (r StockMovementRequest) toInput() appoperations.StockMovementInput {
	input := appoperations.StockMovementInput{
		Codigo:      r.Codigo,
		Descripcion: r.Descripcion,
		Quantity:    r.Quantity,
		Notes:       r.Notes,
	}
	if r.SepulturaID != "" {
		id := uuid.MustParse(r.SepulturaID)
		input.SepulturaID = &id
	}
	if r.ExpedienteID != "" {
		id := uuid.MustParse(r.ExpedienteID)
		input.ExpedienteID = &id
	}
	return input
}

// StockEntry godoc
// @Summary  Register gravestone stock arrival
// @Tags     stock
// @Accept   json
// @Produce  json
// @Param    request body StockMovementRequest true "movement"
// @Success  200 {object} dto.Response
// @Router   /stock/entries [post]
func (h *OperationsHandler) StockEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	stock, err := h.svc.StockEntry(c.Request.Context(), tenantID, getUserID(c), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// StockExit godoc
// @Summary  Register gravestone stock consumption
// @Tags     stock
// @Accept   json
// @Produce  json
// @Param    request body StockMovementRequest true "movement"
// @Success  200 {object} dto.Response
// @Router   /stock/exits [post]
func (h *OperationsHandler) StockExit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	stock, err := h.svc.StockExit(c.Request.Context(), tenantID, getUserID(c), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListStock godoc
// @Summary  List gravestone stock
// @Tags     stock
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /stock [get]
func (h *OperationsHandler) ListStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	stock, err := h.svc.ListStock(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// StockMovimientos godoc
// @Summary  List the movement ledger of a stock row
// @Tags     stock
// @Produce  json
// @Param    id path string true "stock id"
// @Success  200 {object} dto.Response
// @Router   /stock/{id}/movimientos [get]
func (h *OperationsHandler) StockMovimientos(c *gin.Context) {
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
	movs, err := h.svc.StockMovimientos(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movs)
}

// CreateInscripcionRequest registers a lateral inscription order
type CreateInscripcionRequest struct {
	SepulturaID  string `json:"sepultura_id" binding:"required,uuid"`
	ExpedienteID string `json:"expediente_id" binding:"omitempty,uuid"`
	Texto        string `json:"texto" binding:"required"`
}

// CreateInscripcion godoc
// @Summary  Register a lateral inscription
// @Tags     inscriptions
// @Accept   json
// @Produce  json
// @Param    request body CreateInscripcionRequest true "inscription"
// @Success  201 {object} dto.Response
// @Router   /inscripciones [post]
func (h *OperationsHandler) CreateInscripcion(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateInscripcionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	var expedienteID *uuid.UUID
	if req.ExpedienteID != "" {
		id := uuid.MustParse(req.ExpedienteID)
		expedienteID = &id
	}
	ins, err := h.svc.CreateInscripcion(c.Request.Context(), tenantID, getUserID(c),
		uuid.MustParse(req.SepulturaID), expedienteID, req.Texto)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ins)
}

// ListInscripciones godoc
// @Summary  List lateral inscriptions
// @Tags     inscriptions
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /inscripciones [get]
func (h *OperationsHandler) ListInscripciones(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	filter := listFilter(c)
	result, err := h.svc.ListInscripciones(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// AdvanceInscripcion godoc
// @Summary  Advance an inscription along its chain
// @Tags     inscriptions
// @Accept   json
// @Produce  json
// @Param    id path string true "inscription id"
// @Param    request body ChangeEstadoRequest true "target state"
// @Success  200 {object} dto.Response
// @Router   /inscripciones/{id}/estado [put]
func (h *OperationsHandler) AdvanceInscripcion(c *gin.Context) {
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
	var req ChangeEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ins, err := h.svc.AdvanceInscripcion(c.Request.Context(), tenantID, id, req.Estado)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ins)
}

// listFilter builds a shared.Filter from the common query parameters
func listFilter(c *gin.Context) shared.Filter {
	var req struct {
		Page        int    `form:"page"`
		PageSize    int    `form:"page_size"`
		Estado      string `form:"estado"`
		Tipo        string `form:"tipo"`
		SepulturaID string `form:"sepultura_id"`
		Search      string `form:"search"`
	}
	_ = c.ShouldBindQuery(&req)

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 && req.PageSize <= 100 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	if req.Estado != "" {
		filter.Filters["estado"] = req.Estado
	}
	if req.Tipo != "" {
		filter.Filters["tipo"] = req.Tipo
	}
	if req.SepulturaID != "" {
		if id, err := uuid.Parse(req.SepulturaID); err == nil {
			filter.Filters["sepultura_id"] = id
		}
	}
	return filter
}
