package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcontract "github.com/cementiri/backend/internal/application/contract"
)

// ContractHandler exposes funeral-right contracts
type ContractHandler struct {
	BaseHandler
	svc *appcontract.ContractService
}

// NewContractHandler creates the handler
func NewContractHandler(svc *appcontract.ContractService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

// PersonRequest references an existing person or describes a new one
type PersonRequest struct {
	PersonID  string `json:"person_id" binding:"omitempty,uuid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DniNif    string `json:"dni_nif"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (r PersonRequest) toInput() appcontract.PersonInput {
	input := appcontract.PersonInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		DniNif:    r.DniNif,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
	}
	if r.PersonID != "" {
		id := uuid.MustParse(r.PersonID)
		input.PersonID = &id
	}
	return input
}

// CreateContractRequest activates a contract over a grave
type CreateContractRequest struct {
	SepulturaID       string         `json:"sepultura_id" binding:"required,uuid"`
	Tipo              string         `json:"tipo" binding:"required"`
	FechaInicio       string         `json:"fecha_inicio" binding:"required"`
	FechaFin          string         `json:"fecha_fin" binding:"required"`
	Legacy99Years     bool           `json:"legacy_99_years"`
	AnnualFeeAmount   string         `json:"annual_fee_amount" binding:"required"`
	Holder            PersonRequest  `json:"holder" binding:"required"`
	HolderIsPensioner bool           `json:"holder_is_pensioner"`
	Beneficiary       *PersonRequest `json:"beneficiary"`
}

// CreateContract godoc
// @Summary  Create a funeral-right contract
// @Tags     contracts
// @Accept   json
// @Produce  json
// @Param    request body CreateContractRequest true "contract"
// @Success  201 {object} dto.Response
// @Router   /contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inicio, err := time.Parse("2006-01-02", req.FechaInicio)
	if err != nil {
		h.BadRequest(c, "invalid fecha_inicio, expected YYYY-MM-DD")
		return
	}
	fin, err := time.Parse("2006-01-02", req.FechaFin)
	if err != nil {
		h.BadRequest(c, "invalid fecha_fin, expected YYYY-MM-DD")
		return
	}
	fee, err := decimal.NewFromString(req.AnnualFeeAmount)
	if err != nil {
		h.BadRequest(c, "invalid annual_fee_amount")
		return
	}

	input := appcontract.CreateContractInput{
		SepulturaID:       uuid.MustParse(req.SepulturaID),
		Tipo:              req.Tipo,
		FechaInicio:       inicio,
		FechaFin:          fin,
		Legacy99Years:     req.Legacy99Years,
		AnnualFeeAmount:   fee,
		Holder:            req.Holder.toInput(),
		HolderIsPensioner: req.HolderIsPensioner,
	}
	if req.Beneficiary != nil {
		benef := req.Beneficiary.toInput()
		input.Beneficiary = &benef
	}
	contrato, err := h.svc.CreateContract(c.Request.Context(), tenantID, getUserID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contrato)
}

// GetContract godoc
// @Summary  Get a contract with holder, beneficiary and history
// @Tags     contracts
// @Produce  json
// @Param    id path string true "contract id"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
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
	detail, err := h.svc.GetContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// GetActiveBySepultura godoc
// @Summary  Get the active contract of a grave
// @Tags     contracts
// @Produce  json
// @Param    id path string true "grave id"
// @Success  200 {object} dto.Response
// @Router   /sepulturas/{id}/contract [get]
func (h *ContractHandler) GetActiveBySepultura(c *gin.Context) {
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
	contrato, err := h.svc.GetActiveBySepultura(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contrato)
}

// NominateBeneficiary godoc
// @Summary  Replace the contract beneficiary
// @Tags     contracts
// @Accept   json
// @Produce  json
// @Param    id path string true "contract id"
// @Param    request body PersonRequest true "beneficiary"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/beneficiary [put]
func (h *ContractHandler) NominateBeneficiary(c *gin.Context) {
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
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	benef, err := h.svc.NominateBeneficiary(c.Request.Context(), tenantID, getUserID(c), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, benef)
}

// RemoveBeneficiary godoc
// @Summary  Remove the active beneficiary
// @Tags     contracts
// @Param    id path string true "contract id"
// @Success  204
// @Router   /contracts/{id}/beneficiary [delete]
func (h *ContractHandler) RemoveBeneficiary(c *gin.Context) {
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
	if err := h.svc.RemoveBeneficiary(c.Request.Context(), tenantID, getUserID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetPensionerRequest flags or clears the pensioner condition
type SetPensionerRequest struct {
	Pensioner        bool   `json:"pensioner"`
	Since            string `json:"since"`
	AllowRetroactive bool   `json:"allow_retroactive"`
}

// SetPensioner godoc
// @Summary  Set the holder pensioner condition
// @Tags     contracts
// @Accept   json
// @Produce  json
// @Param    id path string true "contract id"
// @Param    request body SetPensionerRequest true "pensioner flag"
// @Success  200 {object} dto.Response
// @Router   /contracts/{id}/pensioner [put]
func (h *ContractHandler) SetPensioner(c *gin.Context) {
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
	var req SetPensionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	var since *time.Time
	if req.Since != "" {
		d, err := time.Parse("2006-01-02", req.Since)
		if err != nil {
			h.BadRequest(c, "invalid since, expected YYYY-MM-DD")
			return
		}
		since = &d
	}
	holder, err := h.svc.SetPensioner(c.Request.Context(), tenantID, getUserID(c), id, req.Pensioner, since, req.AllowRetroactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, holder)
}

// EmitTitle godoc
// @Summary  Emit the funeral-right title PDF
// @Tags     contracts
// @Produce  application/pdf
// @Param    id path string true "contract id"
// @Success  200 {file} binary
// @Router   /contracts/{id}/title [post]
func (h *ContractHandler) EmitTitle(c *gin.Context) {
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
	pdf, err := h.svc.EmitTitle(c.Request.Context(), tenantID, getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(200, "application/pdf", pdf)
}

// Extinguish godoc
// @Summary  Extinguish a contract
// @Tags     contracts
// @Param    id path string true "contract id"
// @Success  204
// @Router   /contracts/{id}/extinguish [post]
func (h *ContractHandler) Extinguish(c *gin.Context) {
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
	if err := h.svc.Extinguish(c.Request.Context(), tenantID, getUserID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
