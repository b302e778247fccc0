package transfer

import (
	"strings"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyRole identifies what a person is in a transfer case
type PartyRole string

const (
	RoleAnteriorTitular PartyRole = "ANTERIOR_TITULAR"
	RoleNuevoTitular    PartyRole = "NUEVO_TITULAR"
	RoleBeneficiario    PartyRole = "BENEFICIARIO"
	RoleSolicitante     PartyRole = "SOLICITANTE"
	RoleOtro            PartyRole = "OTRO"
)

// IsValid checks if the role is a known value
func (r PartyRole) IsValid() bool {
	switch r {
	case RoleAnteriorTitular, RoleNuevoTitular, RoleBeneficiario, RoleSolicitante, RoleOtro:
		return true
	}
	return false
}

// ParsePartyRole parses a raw role string
func ParsePartyRole(raw string) (PartyRole, error) {
	r := PartyRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid party role")
	}
	return r, nil
}

// OwnershipTransferParty links a person to a case under a role.
// Roles other than OTRO are unique per case.
type OwnershipTransferParty struct {
	shared.TenantAggregateRoot
	CaseID     uuid.UUID
	Role       PartyRole
	PersonID   uuid.UUID
	Percentage *decimal.Decimal
	Notes      string
}

// NewParty creates a case party
func NewParty(tenantID, caseID, personID uuid.UUID, role PartyRole) (*OwnershipTransferParty, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid party role")
	}
	return &OwnershipTransferParty{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CaseID:              caseID,
		Role:                role,
		PersonID:            personID,
	}, nil
}
