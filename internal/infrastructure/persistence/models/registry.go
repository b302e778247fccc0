package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cementiri/backend/internal/domain/registry"
)

// CemeteryModel maps the cemeteries table
type CemeteryModel struct {
	TenantModel
	Name         string `gorm:"size:255;not null"`
	Municipality string `gorm:"size:255"`
}

// TableName returns the table name
func (CemeteryModel) TableName() string { return "cemeteries" }

// FromDomain fills the model from the domain aggregate
func (m *CemeteryModel) FromDomain(c *registry.Cemetery) {
	m.TenantModel = tenantModelFrom(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Municipality = c.Municipality
}

// ToDomain reconstructs the domain aggregate
func (m *CemeteryModel) ToDomain() *registry.Cemetery {
	return &registry.Cemetery{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		Name:                m.Name,
		Municipality:        m.Municipality,
	}
}

// SepulturaModel maps the sepulturas table. Location is unique per tenant,
// cemetery and block.
type SepulturaModel struct {
	TenantModel
	CemeteryID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_sepultura_location"`
	Bloque      string    `gorm:"size:64;not null;uniqueIndex:idx_sepultura_location"`
	Fila        int       `gorm:"not null;uniqueIndex:idx_sepultura_location"`
	Columna     int       `gorm:"not null;uniqueIndex:idx_sepultura_location"`
	Numero      int       `gorm:"not null;uniqueIndex:idx_sepultura_location"`
	Via         string    `gorm:"size:128"`
	Modalidad   string    `gorm:"size:64"`
	Estado      string    `gorm:"size:16;not null;index"`
	TipoBloque  string    `gorm:"size:64"`
	TipoLapida  string    `gorm:"size:64"`
	Orientacion string    `gorm:"size:32"`
}

// TableName returns the table name
func (SepulturaModel) TableName() string { return "sepulturas" }

// FromDomain fills the model from the domain aggregate
func (m *SepulturaModel) FromDomain(s *registry.Sepultura) {
	m.TenantModel = tenantModelFrom(s.TenantAggregateRoot)
	m.CemeteryID = s.CemeteryID
	m.Bloque = s.Bloque
	m.Fila = s.Fila
	m.Columna = s.Columna
	m.Numero = s.Numero
	m.Via = s.Via
	m.Modalidad = s.Modalidad
	m.Estado = string(s.Estado)
	m.TipoBloque = s.TipoBloque
	m.TipoLapida = s.TipoLapida
	m.Orientacion = s.Orientacion
}

// ToDomain reconstructs the domain aggregate
func (m *SepulturaModel) ToDomain() *registry.Sepultura {
	return &registry.Sepultura{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		CemeteryID:          m.CemeteryID,
		Bloque:              m.Bloque,
		Fila:                m.Fila,
		Columna:             m.Columna,
		Numero:              m.Numero,
		Via:                 m.Via,
		Modalidad:           m.Modalidad,
		Estado:              registry.SepulturaEstado(m.Estado),
		TipoBloque:          m.TipoBloque,
		TipoLapida:          m.TipoLapida,
		Orientacion:         m.Orientacion,
	}
}

// PersonModel maps the persons table. NameFolded holds the lowercase
// accent-stripped full name used for search.
type PersonModel struct {
	TenantModel
	FirstName  string `gorm:"size:128;not null"`
	LastName   string `gorm:"size:128"`
	NameFolded string `gorm:"size:260;index"`
	DniNif     string `gorm:"size:32;index"`
	Email      string `gorm:"size:255"`
	Phone      string `gorm:"size:32"`
	Address    string `gorm:"size:512"`
}

// TableName returns the table name
func (PersonModel) TableName() string { return "persons" }

// FromDomain fills the model from the domain aggregate
func (m *PersonModel) FromDomain(p *registry.Person) {
	m.TenantModel = tenantModelFrom(p.TenantAggregateRoot)
	m.FirstName = p.FirstName
	m.LastName = p.LastName
	m.NameFolded = registry.FoldName(p.FullName())
	m.DniNif = p.DniNif
	m.Email = p.Email
	m.Phone = p.Phone
	m.Address = p.Address
}

// ToDomain reconstructs the domain aggregate
func (m *PersonModel) ToDomain() *registry.Person {
	return &registry.Person{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		DniNif:              m.DniNif,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
	}
}

// MovimientoSepulturaModel maps the append-only grave ledger
type MovimientoSepulturaModel struct {
	TenantModel
	SepulturaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo        string     `gorm:"size:32;not null"`
	Fecha       time.Time  `gorm:"not null"`
	Detalle     string     `gorm:"type:text"`
	UserID      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name
func (MovimientoSepulturaModel) TableName() string { return "movimientos_sepultura" }

// FromDomain fills the model from the domain entity
func (m *MovimientoSepulturaModel) FromDomain(mv *registry.MovimientoSepultura) {
	m.TenantModel = tenantModelFrom(mv.TenantAggregateRoot)
	m.SepulturaID = mv.SepulturaID
	m.Tipo = string(mv.Tipo)
	m.Fecha = mv.Fecha
	m.Detalle = mv.Detalle
	m.UserID = mv.UserID
}

// ToDomain reconstructs the domain entity
func (m *MovimientoSepulturaModel) ToDomain() *registry.MovimientoSepultura {
	return &registry.MovimientoSepultura{
		TenantAggregateRoot: m.TenantModel.toAggregate(),
		SepulturaID:         m.SepulturaID,
		Tipo:                registry.MovimientoTipo(m.Tipo),
		Fecha:               m.Fecha,
		Detalle:             m.Detalle,
		UserID:              m.UserID,
	}
}
