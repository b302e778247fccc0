package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository persists organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByCode(ctx context.Context, code string) (*Organization, error)
	FindAll(ctx context.Context) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
}

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// MembershipRepository persists user-organization memberships
type MembershipRepository interface {
	FindByUserAndOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	Save(ctx context.Context, membership *Membership) error
}
