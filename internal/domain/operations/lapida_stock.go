package operations

import (
	"strings"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LapidaStock is a gravestone model tracked in inventory, keyed by codigo
type LapidaStock struct {
	shared.TenantAggregateRoot
	Codigo       string
	Descripcion  string
	Estado       string
	AvailableQty int
}

// NewLapidaStock creates an empty stock row for a gravestone model
func NewLapidaStock(tenantID uuid.UUID, codigo, descripcion string) (*LapidaStock, error) {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	if codigo == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "stock code is required")
	}
	return &LapidaStock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Codigo:              codigo,
		Descripcion:         descripcion,
		Estado:              "ACTIVO",
		AvailableQty:        0,
	}, nil
}

// Enter adds quantity to stock
func (s *LapidaStock) Enter(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	s.AvailableQty += qty
	return nil
}

// Exit removes quantity from stock, failing when not enough is available
func (s *LapidaStock) Exit(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	if qty > s.AvailableQty {
		return shared.ErrInsufficientStock
	}
	s.AvailableQty -= qty
	return nil
}

// StockMovimientoTipo is the direction of a stock movement
type StockMovimientoTipo string

const (
	StockEntrada StockMovimientoTipo = "ENTRADA"
	StockSalida  StockMovimientoTipo = "SALIDA"
)

// LapidaStockMovimiento is an append-only stock ledger entry. Exits may be
// tied to the grave and expediente consuming the gravestone.
type LapidaStockMovimiento struct {
	shared.TenantAggregateRoot
	LapidaStockID uuid.UUID
	Movimiento    StockMovimientoTipo
	Quantity      int
	SepulturaID   *uuid.UUID
	ExpedienteID  *uuid.UUID
	Notes         string
}

// NewStockMovimiento creates a ledger entry
func NewStockMovimiento(tenantID, stockID uuid.UUID, tipo StockMovimientoTipo, qty int, notes string) *LapidaStockMovimiento {
	return &LapidaStockMovimiento{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LapidaStockID:       stockID,
		Movimiento:          tipo,
		Quantity:            qty,
		Notes:               notes,
	}
}
