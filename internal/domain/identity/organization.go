package identity

import (
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Organization is a municipality (or municipal funeral service) operating one
// or more cemeteries. It is the tenant boundary: every record in the system
// belongs to exactly one organization.
type Organization struct {
	shared.BaseAggregateRoot
	Code                 string
	Name                 string
	PensionerDiscountPct decimal.Decimal
	Active               bool
}

// DefaultPensionerDiscountPct is applied when an organization has no explicit percentage.
var DefaultPensionerDiscountPct = decimal.NewFromFloat(10.00)

// NewOrganization creates an organization with the default pensioner discount
func NewOrganization(code, name string) (*Organization, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "organization code is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "organization name is required")
	}
	return &Organization{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Code:                 code,
		Name:                 name,
		PensionerDiscountPct: DefaultPensionerDiscountPct,
		Active:               true,
	}, nil
}

// SetPensionerDiscountPct updates the discount percentage applied to
// maintenance-fee tickets of pensioner holders.
func (o *Organization) SetPensionerDiscountPct(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_INPUT", "discount percentage must be between 0 and 100")
	}
	o.PensionerDiscountPct = pct
	return nil
}

// MembershipRole defines what a user can do inside an organization
type MembershipRole string

const (
	RoleAdmin   MembershipRole = "ADMIN"
	RoleGestor  MembershipRole = "GESTOR"
	RoleLectura MembershipRole = "LECTURA"
)

// IsValid checks if the role is a known value
func (r MembershipRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGestor, RoleLectura:
		return true
	}
	return false
}

// Membership links a user to an organization with a role.
// A user has at most one membership per organization.
type Membership struct {
	shared.BaseAggregateRoot
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           MembershipRole
}

// NewMembership creates a membership
func NewMembership(userID, organizationID uuid.UUID, role MembershipRole) (*Membership, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid membership role")
	}
	return &Membership{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		OrganizationID:    organizationID,
		Role:              role,
	}, nil
}

// CanWrite reports whether the role allows mutations
func (m *Membership) CanWrite() bool {
	return m.Role == RoleAdmin || m.Role == RoleGestor
}
