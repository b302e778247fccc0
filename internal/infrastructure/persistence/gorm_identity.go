package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/identity"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// GormOrganizationRepository implements identity.OrganizationRepository
type GormOrganizationRepository struct {
	db *Database
}

// NewGormOrganizationRepository creates the repository
func NewGormOrganizationRepository(db *Database) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID loads an organization
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var m models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByCode loads an organization by its unique code
func (r *GormOrganizationRepository) FindByCode(ctx context.Context, code string) (*identity.Organization, error) {
	var m models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&m, "code = ?", code).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists all organizations
func (r *GormOrganizationRepository) FindAll(ctx context.Context) ([]identity.Organization, error) {
	var ms []models.OrganizationModel
	if err := r.db.WithContext(ctx).Order("code").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]identity.Organization, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	var m models.OrganizationModel
	m.FromDomain(org)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormUserRepository implements identity.UserRepository
type GormUserRepository struct {
	db *Database
}

// NewGormUserRepository creates the repository
func NewGormUserRepository(db *Database) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID loads a user
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByEmail loads a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save upserts a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	var m models.UserModel
	m.FromDomain(user)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormMembershipRepository implements identity.MembershipRepository
type GormMembershipRepository struct {
	db *Database
}

// NewGormMembershipRepository creates the repository
func NewGormMembershipRepository(db *Database) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByUserAndOrganization loads one membership
func (r *GormMembershipRepository) FindByUserAndOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*identity.Membership, error) {
	var m models.MembershipModel
	err := r.db.WithContext(ctx).
		First(&m, "user_id = ? AND organization_id = ?", userID, organizationID).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByUser lists all memberships of a user
func (r *GormMembershipRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.Membership, error) {
	var ms []models.MembershipModel
	if err := r.db.WithContext(ctx).Find(&ms, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	out := make([]identity.Membership, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a membership
func (r *GormMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	var m models.MembershipModel
	m.FromDomain(membership)
	return r.db.WithContext(ctx).Save(&m).Error
}

// translateError maps gorm errors to domain errors
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
