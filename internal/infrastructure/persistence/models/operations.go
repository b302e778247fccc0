package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cementiri/backend/internal/domain/operations"
)

// ExpedienteModel maps the expedientes table
type ExpedienteModel struct {
	TenantModel
	Numero             string     `gorm:"size:32;not null;index"`
	Tipo               string     `gorm:"size:16;not null"`
	Estado             string     `gorm:"size:16;not null;index"`
	SepulturaID        *uuid.UUID `gorm:"type:uuid;index"`
	DeclarantePersonID *uuid.UUID `gorm:"type:uuid"`
	FechaServicio      *time.Time `gorm:"type:date"`
	Notes              string     `gorm:"type:text"`
}

// TableName returns the table name
func (ExpedienteModel) TableName() string { return "expedientes" }

// FromDomain fills the model from the domain aggregate
func (m *ExpedienteModel) FromDomain(e *operations.Expediente) {
	m.TenantModel = tenantModelFrom(e.TenantAggregateRoot)
	m.Numero = e.Numero
	m.Tipo = string(e.Tipo)
	m.Estado = string(e.Estado)
	m.SepulturaID = e.SepulturaID
	m.DeclarantePersonID = e.DeclarantePersonID
	m.FechaServicio = e.FechaServicio
	m.Notes = e.Notes
}

// ToDomain reconstructs the domain aggregate
func (m *ExpedienteModel) ToDomain() *operations.Expediente {
	return &operations.Expediente{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		Numero:              m.Numero,
		Tipo:                operations.ExpedienteTipo(m.Tipo),
		Estado:              operations.ExpedienteEstado(m.Estado),
		SepulturaID:         m.SepulturaID,
		DeclarantePersonID:  m.DeclarantePersonID,
		FechaServicio:       m.FechaServicio,
		Notes:               m.Notes,
	}
}

// OrdenTrabajoModel maps the ordenes_trabajo table
type OrdenTrabajoModel struct {
	TenantModel
	ExpedienteID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Descripcion  string     `gorm:"type:text;not null"`
	Estado       string     `gorm:"size:16;not null"`
	CompletedAt  *time.Time
}

// TableName returns the table name
func (OrdenTrabajoModel) TableName() string { return "ordenes_trabajo" }

// FromDomain fills the model from the domain aggregate
func (m *OrdenTrabajoModel) FromDomain(o *operations.OrdenTrabajo) {
	m.TenantModel = tenantModelFrom(o.TenantAggregateRoot)
	m.ExpedienteID = o.ExpedienteID
	m.Descripcion = o.Descripcion
	m.Estado = string(o.Estado)
	m.CompletedAt = o.CompletedAt
}

// ToDomain reconstructs the domain aggregate
func (m *OrdenTrabajoModel) ToDomain() *operations.OrdenTrabajo {
	return &operations.OrdenTrabajo{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		ExpedienteID:        m.ExpedienteID,
		Descripcion:         m.Descripcion,
		Estado:              operations.OrdenTrabajoEstado(m.Estado),
		CompletedAt:         m.CompletedAt,
	}
}

// LapidaStockModel maps the lapida_stock table
type LapidaStockModel struct {
	TenantModel
	Codigo       string `gorm:"size:64;not null;index"`
	Descripcion  string `gorm:"size:255"`
	Estado       string `gorm:"size:16;not null"`
	AvailableQty int    `gorm:"not null;default:0"`
}

// TableName returns the table name
func (LapidaStockModel) TableName() string { return "lapida_stock" }

// FromDomain fills the model from the domain aggregate
func (m *LapidaStockModel) FromDomain(s *operations.LapidaStock) {
	m.TenantModel = tenantModelFrom(s.TenantAggregateRoot)
	m.Codigo = s.Codigo
	m.Descripcion = s.Descripcion
	m.Estado = s.Estado
	m.AvailableQty = s.AvailableQty
}

// ToDomain reconstructs the domain aggregate
func (m *LapidaStockModel) ToDomain() *operations.LapidaStock {
	return &operations.LapidaStock{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		Codigo:              m.Codigo,
		Descripcion:         m.Descripcion,
		Estado:              m.Estado,
		AvailableQty:        m.AvailableQty,
	}
}

// LapidaStockMovimientoModel maps the stock ledger table
type LapidaStockMovimientoModel struct {
	TenantModel
	LapidaStockID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Movimiento    string     `gorm:"size:8;not null"`
	Quantity      int        `gorm:"not null"`
	SepulturaID   *uuid.UUID `gorm:"type:uuid"`
	ExpedienteID  *uuid.UUID `gorm:"type:uuid"`
	Notes         string     `gorm:"type:text"`
}

// TableName returns the table name
func (LapidaStockMovimientoModel) TableName() string { return "lapida_stock_movimientos" }

// FromDomain fills the model from the domain entity
func (m *LapidaStockMovimientoModel) FromDomain(mv *operations.LapidaStockMovimiento) {
	m.TenantModel = tenantModelFrom(mv.TenantAggregateRoot)
	m.LapidaStockID = mv.LapidaStockID
	m.Movimiento = string(mv.Movimiento)
	m.Quantity = mv.Quantity
	m.SepulturaID = mv.SepulturaID
	m.ExpedienteID = mv.ExpedienteID
	m.Notes = mv.Notes
}

// ToDomain reconstructs the domain entity
func (m *LapidaStockMovimientoModel) ToDomain() *operations.LapidaStockMovimiento {
	return &operations.LapidaStockMovimiento{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		LapidaStockID:       m.LapidaStockID,
		Movimiento:          operations.StockMovimientoTipo(m.Movimiento),
		Quantity:            m.Quantity,
		SepulturaID:         m.SepulturaID,
		ExpedienteID:        m.ExpedienteID,
		Notes:               m.Notes,
	}
}

// InscripcionModel maps the inscripciones_laterales table
type InscripcionModel struct {
	TenantModel
	SepulturaID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ExpedienteID *uuid.UUID `gorm:"type:uuid"`
	Texto        string     `gorm:"type:text;not null"`
	Estado       string     `gorm:"size:32;not null;index"`
}

// TableName returns the table name
func (InscripcionModel) TableName() string { return "inscripciones_laterales" }

// FromDomain fills the model from the domain aggregate
func (m *InscripcionModel) FromDomain(i *operations.InscripcionLateral) {
	m.TenantModel = tenantModelFrom(i.TenantAggregateRoot)
	m.SepulturaID = i.SepulturaID
	m.ExpedienteID = i.ExpedienteID
	m.Texto = i.Texto
	m.Estado = string(i.Estado)
}

// ToDomain reconstructs the domain aggregate
func (m *InscripcionModel) ToDomain() *operations.InscripcionLateral {
	return &operations.InscripcionLateral{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		SepulturaID:         m.SepulturaID,
		ExpedienteID:        m.ExpedienteID,
		Texto:               m.Texto,
		Estado:              operations.InscripcionEstado(m.Estado),
	}
}
