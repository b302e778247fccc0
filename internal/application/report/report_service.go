package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
)

const (
	defaultExportLimit = 1000
	maxExportLimit     = 5000

	stalledCaseDays      = 30
	expiringContractDays = 365
	provisionalAlertDays = 180
)

// ReportService builds the management panel and CSV exports
type ReportService struct {
	repos *persistence.Repositories
	log   *zap.Logger
}

// NewReportService creates the service
func NewReportService(repos *persistence.Repositories, log *zap.Logger) *ReportService {
	return &ReportService{repos: repos, log: log}
}

// Panel is the management dashboard snapshot
type Panel struct {
	GravesByEstado map[string]int64 `json:"graves_by_estado"`
	CasesByStatus  map[string]int64 `json:"cases_by_status"`
	Billing        PanelBilling     `json:"billing"`
	Alerts         PanelAlerts      `json:"alerts"`
}

// PanelBilling summarizes the current fee year
type PanelBilling struct {
	Year      int             `json:"year"`
	Pending   decimal.Decimal `json:"pending"`
	Collected decimal.Decimal `json:"collected"`
}

// PanelAlerts counts situations needing attention
type PanelAlerts struct {
	StalledCases        int `json:"stalled_cases"`
	ExpiringContracts   int `json:"expiring_contracts"`
	ExpiringProvisional int `json:"expiring_provisional"`
}

// BuildPanel assembles the dashboard for the current year
func (s *ReportService) BuildPanel(ctx context.Context, tenantID uuid.UUID) (*Panel, error) {
	panel := &Panel{
		GravesByEstado: map[string]int64{},
		CasesByStatus:  map[string]int64{},
	}

	graves, err := s.repos.Sepulturas.CountByEstado(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for estado, n := range graves {
		panel.GravesByEstado[string(estado)] = n
	}

	cases, err := s.repos.Cases.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for status, n := range cases {
		panel.CasesByStatus[string(status)] = n
	}

	year := time.Now().Year()
	pending, collected, err := s.repos.Tickets.TotalsForYear(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}
	panel.Billing = PanelBilling{Year: year, Pending: pending, Collected: collected}

	now := time.Now()
	stalled, err := s.repos.Cases.FindStalledDocsPending(ctx, tenantID, now.AddDate(0, 0, -stalledCaseDays))
	if err != nil {
		return nil, err
	}
	expiring, err := s.repos.Contratos.FindExpiringBefore(ctx, tenantID, now.AddDate(0, 0, expiringContractDays))
	if err != nil {
		return nil, err
	}
	provisional, err := s.repos.Ownership.FindProvisionalExpiringBefore(ctx, tenantID, now.AddDate(0, 0, provisionalAlertDays))
	if err != nil {
		return nil, err
	}
	panel.Alerts = PanelAlerts{
		StalledCases:        len(stalled),
		ExpiringContracts:   len(expiring),
		ExpiringProvisional: len(provisional),
	}
	return panel, nil
}

func clampExportLimit(limit int) int {
	if limit <= 0 {
		return defaultExportLimit
	}
	if limit > maxExportLimit {
		return maxExportLimit
	}
	return limit
}

// ExportGravesCSV writes the grave inventory with outstanding debt as CSV
func (s *ReportService) ExportGravesCSV(ctx context.Context, tenantID uuid.UUID, filter registry.SepulturaSearchFilter, limit int) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = clampExportLimit(limit)

	page, err := s.repos.Sepulturas.Search(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"bloque", "fila", "columna", "numero", "via", "modalidad", "estado", "deuda"}); err != nil {
		return nil, err
	}
	for _, row := range page.Items {
		sep := row.Sepultura
		record := []string{
			sep.Bloque,
			strconv.Itoa(sep.Fila),
			strconv.Itoa(sep.Columna),
			strconv.Itoa(sep.Numero),
			sep.Via,
			sep.Modalidad,
			string(sep.Estado),
			row.Debt.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.log.Info("exported graves csv",
		zap.Int("rows", len(page.Items)),
		zap.String("tenant_id", tenantID.String()))
	return buf.Bytes(), nil
}

// ExportCasesCSV writes the transfer-case listing as CSV
func (s *ReportService) ExportCasesCSV(ctx context.Context, tenantID uuid.UUID, filter transfer.CaseSearchFilter, limit int) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = clampExportLimit(limit)

	page, err := s.repos.Cases.Search(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"numero", "tipo", "estado", "abierto", "resolucion", "cerrado"}); err != nil {
		return nil, err
	}
	for _, c := range page.Items {
		closed := ""
		if c.ClosedAt != nil {
			closed = c.ClosedAt.Format("2006-01-02")
		}
		record := []string{
			c.CaseNumber,
			string(c.Type),
			string(c.Status),
			c.OpenedAt.Format("2006-01-02"),
			c.ResolutionNumber,
			closed,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YearlyBilling reports the collected versus pending totals for a year
func (s *ReportService) YearlyBilling(ctx context.Context, tenantID uuid.UUID, year int) (*PanelBilling, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	pending, collected, err := s.repos.Tickets.TotalsForYear(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}
	return &PanelBilling{Year: year, Pending: pending, Collected: collected}, nil
}
