package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appregistry "github.com/cementiri/backend/internal/application/registry"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/interfaces/http/dto"
)

// SepulturaHandler exposes the grave inventory and the person registry
type SepulturaHandler struct {
	BaseHandler
	svc *appregistry.SepulturaService
}

// NewSepulturaHandler creates the handler
func NewSepulturaHandler(svc *appregistry.SepulturaService) *SepulturaHandler {
	return &SepulturaHandler{svc: svc}
}

// CreateCemeteryRequest registers a cemetery site
type CreateCemeteryRequest struct {
	Name         string `json:"name" binding:"required"`
	Municipality string `json:"municipality"`
}

// CreateCemetery godoc
// @Summary  Register a cemetery
// @Tags     registry
// @Accept   json
// @Produce  json
// @Param    request body CreateCemeteryRequest true "cemetery"
// @Success  201 {object} dto.Response
// @Router   /cemeteries [post]
func (h *SepulturaHandler) CreateCemetery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateCemeteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cem, err := h.svc.CreateCemetery(c.Request.Context(), tenantID, req.Name, req.Municipality)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cem)
}

// ListCemeteries godoc
// @Summary  List cemeteries
// @Tags     registry
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /cemeteries [get]
func (h *SepulturaHandler) ListCemeteries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	cems, err := h.svc.Cemeteries(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cems)
}

// CreateSepulturaRequest registers one grave
type CreateSepulturaRequest struct {
	CemeteryID  string `json:"cemetery_id" binding:"required,uuid"`
	Bloque      string `json:"bloque" binding:"required"`
	Fila        int    `json:"fila" binding:"required,min=1"`
	Columna     int    `json:"columna" binding:"required,min=1"`
	Numero      int    `json:"numero" binding:"required,min=1"`
	Via         string `json:"via"`
	Modalidad   string `json:"modalidad"`
	Estado      string `json:"estado"`
	TipoBloque  string `json:"tipo_bloque"`
	TipoLapida  string `json:"tipo_lapida"`
	Orientacion string `json:"orientacion"`
}

// CreateSepultura godoc
// @Summary  Register a grave
// @Tags     registry
// @Accept   json
// @Produce  json
// @Param    request body CreateSepulturaRequest true "grave"
// @Success  201 {object} dto.Response
// @Router   /sepulturas [post]
func (h *SepulturaHandler) CreateSepultura(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateSepulturaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cemeteryID, err := uuid.Parse(req.CemeteryID)
	if err != nil {
		h.BadRequest(c, "invalid cemetery_id")
		return
	}
	sep, err := h.svc.CreateSepultura(c.Request.Context(), tenantID, getUserID(c), appregistry.CreateSepulturaInput{
		CemeteryID:  cemeteryID,
		Bloque:      req.Bloque,
		Fila:        req.Fila,
		Columna:     req.Columna,
		Numero:      req.Numero,
		Via:         req.Via,
		Modalidad:   req.Modalidad,
		Estado:      req.Estado,
		TipoBloque:  req.TipoBloque,
		TipoLapida:  req.TipoLapida,
		Orientacion: req.Orientacion,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sep)
}

// GetSepultura godoc
// @Summary  Get a grave
// @Tags     registry
// @Produce  json
// @Param    id path string true "grave id"
// @Success  200 {object} dto.Response
// @Router   /sepulturas/{id} [get]
func (h *SepulturaHandler) GetSepultura(c *gin.Context) {
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
	sep, err := h.svc.GetSepultura(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sep)
}

// SearchSepulturasRequest narrows the grave search
type SearchSepulturasRequest struct {
	dto.ListRequest
	CemeteryID string `form:"cemetery_id" binding:"omitempty,uuid"`
	Bloque     string `form:"bloque"`
	Estado     string `form:"estado"`
	Numero     *int   `form:"numero"`
	HolderName string `form:"holder_name"`
}

// SearchSepulturas godoc
// @Summary  Search graves with outstanding debt
// @Tags     registry
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /sepulturas [get]
func (h *SepulturaHandler) SearchSepulturas(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req SearchSepulturasRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Normalize()

	filter := registry.SepulturaSearchFilter{
		Bloque:     req.Bloque,
		Estado:     registry.SepulturaEstado(req.Estado),
		Numero:     req.Numero,
		HolderName: req.HolderName,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.CemeteryID != "" {
		id := uuid.MustParse(req.CemeteryID)
		filter.CemeteryID = &id
	}
	page, err := h.svc.Search(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ChangeSepulturaEstadoRequest applies a manual grave state change
type ChangeSepulturaEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// ChangeEstado godoc
// @Summary  Change a grave state
// @Tags     registry
// @Accept   json
// @Produce  json
// @Param    id path string true "grave id"
// @Param    request body ChangeSepulturaEstadoRequest true "target state"
// @Success  200 {object} dto.Response
// @Router   /sepulturas/{id}/estado [put]
func (h *SepulturaHandler) ChangeEstado(c *gin.Context) {
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
	var req ChangeSepulturaEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sep, err := h.svc.ChangeEstado(c.Request.Context(), tenantID, getUserID(c), id, req.Estado)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sep)
}

// MassCreateRequest creates a rectangular block of graves
type MassCreateRequest struct {
	CemeteryID  string `json:"cemetery_id" binding:"required,uuid"`
	Bloque      string `json:"bloque" binding:"required"`
	FilaFrom    int    `json:"fila_from" binding:"required,min=1"`
	FilaTo      int    `json:"fila_to" binding:"required,min=1"`
	ColumnaFrom int    `json:"columna_from" binding:"required,min=1"`
	ColumnaTo   int    `json:"columna_to" binding:"required,min=1"`
	NumeroStart int    `json:"numero_start" binding:"required,min=1"`
	Via         string `json:"via"`
	Modalidad   string `json:"modalidad"`
	TipoBloque  string `json:"tipo_bloque"`
	TipoLapida  string `json:"tipo_lapida"`
	Orientacion string `json:"orientacion"`
	// Preview reports counts without creating anything
	Preview bool `json:"preview"`
}

func (r MassCreateRequest) toInput() (appregistry.MassCreateInput, error) {
	cemeteryID, err := uuid.Parse(r.CemeteryID)
	if err != nil {
		return appregistry.MassCreateInput{}, shared.NewDomainError("INVALID_INPUT", "invalid cemetery_id")
	}
	return appregistry.MassCreateInput{
		CemeteryID:  cemeteryID,
		Bloque:      r.Bloque,
		FilaFrom:    r.FilaFrom,
		FilaTo:      r.FilaTo,
		ColumnaFrom: r.ColumnaFrom,
		ColumnaTo:   r.ColumnaTo,
		NumeroStart: r.NumeroStart,
		Via:         r.Via,
		Modalidad:   r.Modalidad,
		TipoBloque:  r.TipoBloque,
		TipoLapida:  r.TipoLapida,
		Orientacion: r.Orientacion,
	}, nil
}

// MassCreate godoc
// @Summary  Mass-create a block of graves
// @Tags     registry
// @Accept   json
// @Produce  json
// @Param    request body MassCreateRequest true "grid"
// @Success  200 {object} dto.Response
// @Router   /sepulturas/mass-create [post]
func (h *SepulturaHandler) MassCreate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req MassCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Preview {
		preview, err := h.svc.PreviewMassCreate(c.Request.Context(), tenantID, input)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, preview)
		return
	}
	result, err := h.svc.MassCreate(c.Request.Context(), tenantID, getUserID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Movimientos godoc
// @Summary  List the grave ledger
// @Tags     registry
// @Produce  json
// @Param    id path string true "grave id"
// @Success  200 {object} dto.Response
// @Router   /sepulturas/{id}/movimientos [get]
func (h *SepulturaHandler) Movimientos(c *gin.Context) {
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
	movs, err := h.svc.Movimientos(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movs)
}

// SearchPersons godoc
// @Summary  Search persons by accent-insensitive name
// @Tags     registry
// @Produce  json
// @Param    name query string true "name fragment"
// @Success  200 {object} dto.Response
// @Router   /persons [get]
func (h *SepulturaHandler) SearchPersons(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	page, err := h.svc.SearchPersons(c.Request.Context(), tenantID, c.Query("name"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
