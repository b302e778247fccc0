package registry

import (
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Cemetery groups graves under a municipality site
type Cemetery struct {
	shared.TenantAggregateRoot
	Name         string
	Municipality string
}

// NewCemetery creates a cemetery
func NewCemetery(tenantID uuid.UUID, name, municipality string) (*Cemetery, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "cemetery name is required")
	}
	return &Cemetery{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Municipality:        municipality,
	}, nil
}
