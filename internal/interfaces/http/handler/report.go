package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreport "github.com/cementiri/backend/internal/application/report"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
)

// ReportHandler exposes the management panel and CSV exports
type ReportHandler struct {
	BaseHandler
	svc *appreport.ReportService
}

// NewReportHandler creates the handler
func NewReportHandler(svc *appreport.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Panel godoc
// @Summary  Management panel with occupancy, workflow and billing figures
// @Tags     reports
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /reports/panel [get]
func (h *ReportHandler) Panel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	panel, err := h.svc.BuildPanel(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, panel)
}

// ExportGraves godoc
// @Summary  Export the grave inventory as CSV
// @Tags     reports
// @Produce  text/csv
// @Param    cemetery_id query string false "cemetery"
// @Param    estado query string false "grave state"
// @Param    limit query int false "row limit"
// @Success  200 {file} binary
// @Router   /reports/graves.csv [get]
func (h *ReportHandler) ExportGraves(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	filter := registry.SepulturaSearchFilter{
		Bloque:     c.Query("bloque"),
		Estado:     registry.SepulturaEstado(c.Query("estado")),
		HolderName: c.Query("holder_name"),
	}
	if raw := c.Query("cemetery_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid cemetery_id")
			return
		}
		filter.CemeteryID = &id
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	csvBytes, err := h.svc.ExportGravesCSV(c.Request.Context(), tenantID, filter, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="graves.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvBytes)
}

// ExportCases godoc
// @Summary  Export transfer cases as CSV
// @Tags     reports
// @Produce  text/csv
// @Param    status query string false "case status"
// @Param    type query string false "case type"
// @Param    limit query int false "row limit"
// @Success  200 {file} binary
// @Router   /reports/cases.csv [get]
func (h *ReportHandler) ExportCases(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	filter := transfer.CaseSearchFilter{
		Type:   transfer.CaseType(c.Query("type")),
		Status: transfer.CaseStatus(c.Query("status")),
	}
	if raw := c.Query("opened_from"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "invalid opened_from, expected YYYY-MM-DD")
			return
		}
		filter.OpenedFrom = &d
	}
	if raw := c.Query("opened_to"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "invalid opened_to, expected YYYY-MM-DD")
			return
		}
		filter.OpenedTo = &d
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	csvBytes, err := h.svc.ExportCasesCSV(c.Request.Context(), tenantID, filter, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transfer-cases.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvBytes)
}

// YearlyBilling godoc
// @Summary  Pending and collected totals for one billing year
// @Tags     reports
// @Produce  json
// @Param    year path int true "billing year"
// @Success  200 {object} dto.Response
// @Router   /reports/billing/{year} [get]
func (h *ReportHandler) YearlyBilling(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant")
		return
	}
	year, err := parsePositiveInt(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "invalid year")
		return
	}
	totals, err := h.svc.YearlyBilling(c.Request.Context(), tenantID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}
