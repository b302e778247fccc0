package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/identity"
)

// OrganizationModel maps the organizations table
type OrganizationModel struct {
	BaseModel
	Code                 string          `gorm:"size:32;not null;uniqueIndex"`
	Name                 string          `gorm:"size:255;not null"`
	PensionerDiscountPct decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Active               bool            `gorm:"not null;default:true"`
}

// TableName returns the table name
func (OrganizationModel) TableName() string { return "organizations" }

// FromDomain fills the model from the domain aggregate
func (m *OrganizationModel) FromDomain(o *identity.Organization) {
	m.BaseModel = baseModelFrom(o.BaseAggregateRoot)
	m.Code = o.Code
	m.Name = o.Name
	m.PensionerDiscountPct = o.PensionerDiscountPct
	m.Active = o.Active
}

// ToDomain reconstructs the domain aggregate
func (m *OrganizationModel) ToDomain() *identity.Organization {
	return &identity.Organization{
		BaseAggregateRoot:    m.BaseModel.toAggregate(),
		Code:                 m.Code,
		Name:                 m.Name,
		PensionerDiscountPct: m.PensionerDiscountPct,
		Active:               m.Active,
	}
}

// UserModel maps the users table
type UserModel struct {
	BaseModel
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:255"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name
func (UserModel) TableName() string { return "users" }

// FromDomain fills the model from the domain aggregate
func (m *UserModel) FromDomain(u *identity.User) {
	m.BaseModel = baseModelFrom(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.Active = u.Active
}

// ToDomain reconstructs the domain aggregate
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.BaseModel.toAggregate(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		Active:            m.Active,
	}
}

// MembershipModel maps the memberships table
type MembershipModel struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_org"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_org"`
	Role           string    `gorm:"size:16;not null"`
}

// TableName returns the table name
func (MembershipModel) TableName() string { return "memberships" }

// FromDomain fills the model from the domain aggregate
func (m *MembershipModel) FromDomain(mb *identity.Membership) {
	m.BaseModel = baseModelFrom(mb.BaseAggregateRoot)
	m.UserID = mb.UserID
	m.OrganizationID = mb.OrganizationID
	m.Role = string(mb.Role)
}

// ToDomain reconstructs the domain aggregate
func (m *MembershipModel) ToDomain() *identity.Membership {
	return &identity.Membership{
		BaseAggregateRoot: m.BaseModel.toAggregate(),
		UserID:            m.UserID,
		OrganizationID:    m.OrganizationID,
		Role:              identity.MembershipRole(m.Role),
	}
}
