package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptransfer "github.com/cementiri/backend/internal/application/transfer"
	"github.com/cementiri/backend/internal/domain/transfer"
)

// TransferCaseHandler exposes the ownership-transfer case workflow
type TransferCaseHandler struct {
	BaseHandler
	svc *apptransfer.CaseService
}

// NewTransferCaseHandler creates the handler
func NewTransferCaseHandler(svc *apptransfer.CaseService) *TransferCaseHandler {
	return &TransferCaseHandler{svc: svc}
}

// CreateCaseRequest opens a transfer case on a contract
type CreateCaseRequest struct {
	ContractID string `json:"contract_id" binding:"required,uuid"`
	Type       string `json:"type" binding:"required"`
	Notes      string `json:"notes"`
}

// CreateCase godoc
// @Summary  Open an ownership-transfer case
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    request body CreateCaseRequest true "case"
// @Success  201 {object} dto.Response
// @Router   /transfer-cases [post]
func (h *TransferCaseHandler) CreateCase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	kase, err := h.svc.CreateCase(c.Request.Context(), tenantID, getUserID(c), apptransfer.CreateCaseInput{
		ContractID: uuid.MustParse(req.ContractID),
		Type:       req.Type,
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, kase)
}

// ListCasesRequest filters the case list
type ListCasesRequest struct {
	Type        string `form:"type"`
	Status      string `form:"status"`
	ContractID  string `form:"contract_id" binding:"omitempty,uuid"`
	SepulturaID string `form:"sepultura_id" binding:"omitempty,uuid"`
	OpenedFrom  string `form:"opened_from"`
	OpenedTo    string `form:"opened_to"`
	PartyName   string `form:"party_name"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,max=100"`
}

// ListCases godoc
// @Summary  List transfer cases
// @Tags     transfer-cases
// @Produce  json
// @Param    status query string false "case status"
// @Param    type query string false "case type"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases [get]
func (h *TransferCaseHandler) ListCases(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	var req ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := transfer.CaseSearchFilter{
		Type:      transfer.CaseType(req.Type),
		Status:    transfer.CaseStatus(req.Status),
		PartyName: req.PartyName,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.ContractID != "" {
		id := uuid.MustParse(req.ContractID)
		filter.ContractID = &id
	}
	if req.SepulturaID != "" {
		id := uuid.MustParse(req.SepulturaID)
		filter.SepulturaID = &id
	}
	if req.OpenedFrom != "" {
		d, err := time.Parse("2006-01-02", req.OpenedFrom)
		if err != nil {
			h.BadRequest(c, "invalid opened_from, expected YYYY-MM-DD")
			return
		}
		filter.OpenedFrom = &d
	}
	if req.OpenedTo != "" {
		d, err := time.Parse("2006-01-02", req.OpenedTo)
		if err != nil {
			h.BadRequest(c, "invalid opened_to, expected YYYY-MM-DD")
			return
		}
		filter.OpenedTo = &d
	}
	result, err := h.svc.ListCases(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetCase godoc
// @Summary  Get a transfer case with its checklist and parties
// @Tags     transfer-cases
// @Produce  json
// @Param    id path string true "case id"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id} [get]
func (h *TransferCaseHandler) GetCase(c *gin.Context) {
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
	kase, err := h.svc.GetCase(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kase)
}

// AddPartyRequest attaches a person to the case under a role
type AddPartyRequest struct {
	Role       string `json:"role" binding:"required"`
	PersonID   string `json:"person_id" binding:"omitempty,uuid"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DniNif     string `json:"dni_nif"`
	Percentage string `json:"percentage"`
	Notes      string `json:"notes"`
}

// AddParty godoc
// @Summary  Attach a party to a case
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    request body AddPartyRequest true "party"
// @Success  201 {object} dto.Response
// @Router   /transfer-cases/{id}/parties [post]
func (h *TransferCaseHandler) AddParty(c *gin.Context) {
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
	var req AddPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	input := apptransfer.AddPartyInput{
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DniNif:    req.DniNif,
		Notes:     req.Notes,
	}
	if req.PersonID != "" {
		pid := uuid.MustParse(req.PersonID)
		input.PersonID = &pid
	}
	if req.Percentage != "" {
		pct, err := decimal.NewFromString(req.Percentage)
		if err != nil {
			h.BadRequest(c, "invalid percentage")
			return
		}
		input.Percentage = &pct
	}
	party, err := h.svc.AddParty(c.Request.Context(), tenantID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, party)
}

// AddPublicationRequest records an official announcement
type AddPublicationRequest struct {
	PublishedAt   string `json:"published_at" binding:"required"`
	Channel       string `json:"channel" binding:"required"`
	ReferenceText string `json:"reference_text"`
}

// AddPublication godoc
// @Summary  Record a publication on a case
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    request body AddPublicationRequest true "publication"
// @Success  201 {object} dto.Response
// @Router   /transfer-cases/{id}/publications [post]
func (h *TransferCaseHandler) AddPublication(c *gin.Context) {
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
	var req AddPublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	publishedAt, err := time.Parse("2006-01-02", req.PublishedAt)
	if err != nil {
		h.BadRequest(c, "invalid published_at, expected YYYY-MM-DD")
		return
	}
	pub, err := h.svc.AddPublication(c.Request.Context(), tenantID, id, apptransfer.AddPublicationInput{
		PublishedAt:   publishedAt,
		Channel:       req.Channel,
		ReferenceText: req.ReferenceText,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pub)
}

// UploadDocument godoc
// @Summary  Upload a checklist document
// @Tags     transfer-cases
// @Accept   multipart/form-data
// @Produce  json
// @Param    id path string true "case id"
// @Param    doc_type formData string true "checklist document type"
// @Param    file formData file true "document file"
// @Success  201 {object} dto.Response
// @Router   /transfer-cases/{id}/documents [post]
func (h *TransferCaseHandler) UploadDocument(c *gin.Context) {
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
	docType := c.PostForm("doc_type")
	if docType == "" {
		h.BadRequest(c, "doc_type is required")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	doc, err := h.svc.UploadDocument(c.Request.Context(), tenantID, getUserID(c), id,
		docType, fileHeader.Filename, contentType, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// DownloadDocument godoc
// @Summary  Download a checklist document
// @Tags     transfer-cases
// @Produce  application/octet-stream
// @Param    id path string true "case id"
// @Param    doc_type path string true "checklist document type"
// @Success  200 {file} binary
// @Router   /transfer-cases/{id}/documents/{doc_type} [get]
func (h *TransferCaseHandler) DownloadDocument(c *gin.Context) {
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
	body, contentType, err := h.svc.DownloadDocument(c.Request.Context(), tenantID, id, c.Param("doc_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", contentType)
	io.Copy(c.Writer, body)
}

// DownloadResolution godoc
// @Summary  Download the resolution PDF of an approved case
// @Tags     transfer-cases
// @Produce  application/pdf
// @Param    id path string true "case id"
// @Success  200 {file} binary
// @Router   /transfer-cases/{id}/resolution [get]
func (h *TransferCaseHandler) DownloadResolution(c *gin.Context) {
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
	body, _, err := h.svc.DownloadResolution(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/pdf")
	io.Copy(c.Writer, body)
}

// ReviewDocumentRequest verifies or rejects a checklist item
type ReviewDocumentRequest struct {
	Verified bool   `json:"verified"`
	Notes    string `json:"notes"`
}

// ReviewDocument godoc
// @Summary  Verify or reject a checklist document
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    doc_type path string true "checklist document type"
// @Param    request body ReviewDocumentRequest true "review"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id}/documents/{doc_type}/review [put]
func (h *TransferCaseHandler) ReviewDocument(c *gin.Context) {
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
	userID := getUserID(c)
	if userID == nil {
		h.BadRequest(c, "reviewer identity is required")
		return
	}
	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	doc, err := h.svc.ReviewDocument(c.Request.Context(), tenantID, *userID, id,
		c.Param("doc_type"), req.Verified, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ChangeStatusRequest moves a case along its state graph
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus godoc
// @Summary  Change the case status
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    request body ChangeStatusRequest true "target status"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id}/status [put]
func (h *TransferCaseHandler) ChangeStatus(c *gin.Context) {
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
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	kase, err := h.svc.ChangeStatus(c.Request.Context(), tenantID, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kase)
}

// Approve godoc
// @Summary  Approve a case and emit its resolution
// @Tags     transfer-cases
// @Produce  json
// @Param    id path string true "case id"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id}/approve [post]
func (h *TransferCaseHandler) Approve(c *gin.Context) {
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
	kase, err := h.svc.Approve(c.Request.Context(), tenantID, getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kase)
}

// RejectRequest carries the rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject godoc
// @Summary  Reject a case
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    request body RejectRequest true "reason"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id}/reject [post]
func (h *TransferCaseHandler) Reject(c *gin.Context) {
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
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	kase, err := h.svc.Reject(c.Request.Context(), tenantID, getUserID(c), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kase)
}

// NewBeneficiaryRequest identifies the replacement beneficiary
type NewBeneficiaryRequest struct {
	PersonID  string `json:"person_id" binding:"omitempty,uuid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DniNif    string `json:"dni_nif"`
}

// CloseCaseRequest finalizes an approved case
type CloseCaseRequest struct {
	Decision       string                 `json:"decision"`
	NewBeneficiary *NewBeneficiaryRequest `json:"new_beneficiary"`
	Pensioner      bool                   `json:"pensioner"`
	PensionerSince string                 `json:"pensioner_since"`
}

// CloseCase godoc
// @Summary  Close an approved case and register the new holder
// @Tags     transfer-cases
// @Accept   json
// @Produce  json
// @Param    id path string true "case id"
// @Param    request body CloseCaseRequest false "beneficiary decision"
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/{id}/close [post]
func (h *TransferCaseHandler) CloseCase(c *gin.Context) {
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
	var req CloseCaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	input := apptransfer.CloseCaseInput{Decision: req.Decision, Pensioner: req.Pensioner}
	if req.PensionerSince != "" {
		since, err := time.Parse("2006-01-02", req.PensionerSince)
		if err != nil {
			h.BadRequest(c, "invalid pensioner_since, expected YYYY-MM-DD")
			return
		}
		input.PensionerSince = &since
	}
	if req.NewBeneficiary != nil {
		nb := apptransfer.AddPartyInput{
			FirstName: req.NewBeneficiary.FirstName,
			LastName:  req.NewBeneficiary.LastName,
			DniNif:    req.NewBeneficiary.DniNif,
		}
		if req.NewBeneficiary.PersonID != "" {
			pid := uuid.MustParse(req.NewBeneficiary.PersonID)
			nb.PersonID = &pid
		}
		input.NewBeneficiary = &nb
	}
	kase, err := h.svc.CloseCase(c.Request.Context(), tenantID, getUserID(c), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kase)
}

// StalledCases godoc
// @Summary  List cases stalled in document collection
// @Tags     transfer-cases
// @Produce  json
// @Param    days query int false "minimum days without progress" default(30)
// @Success  200 {object} dto.Response
// @Router   /transfer-cases/stalled [get]
func (h *TransferCaseHandler) StalledCases(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.BadRequest(c, "invalid days")
			return
		}
		days = parsed
	}
	cases, err := h.svc.StalledCases(c.Request.Context(), tenantID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cases)
}
