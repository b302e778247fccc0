package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/identity"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/auth"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
)

// AuthService handles login, token refresh and logout. A session is always
// scoped to one organization; users with several memberships log in per
// organization.
type AuthService struct {
	repos     *persistence.Repositories
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	log       *zap.Logger
}

// NewAuthService creates the service
func NewAuthService(repos *persistence.Repositories, jwtSvc *auth.JWTService, blacklist auth.TokenBlacklist, log *zap.Logger) *AuthService {
	return &AuthService{repos: repos, jwt: jwtSvc, blacklist: blacklist, log: log}
}

var errInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "invalid credentials")

// Login authenticates a user against an organization and issues a token pair
func (s *AuthService) Login(ctx context.Context, orgCode, email, password string) (*auth.TokenPair, error) {
	org, err := s.repos.Organizations.FindByCode(ctx, orgCode)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !org.Active {
		return nil, errInvalidCredentials
	}
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !user.CheckPassword(password) {
		return nil, errInvalidCredentials
	}
	membership, err := s.repos.Memberships.FindByUserAndOrganization(ctx, user.ID, org.ID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	pair, err := s.jwt.GenerateTokenPair(org.ID, user.ID, user.Email, string(membership.Role))
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", org.ID.String()),
		zap.String("role", string(membership.Role)))
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The membership is
// re-checked so revoked access does not survive a refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errInvalidCredentials
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errInvalidCredentials
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, errInvalidCredentials
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil || !user.Active {
		return nil, errInvalidCredentials
	}
	membership, err := s.repos.Memberships.FindByUserAndOrganization(ctx, userID, tenantID)
	if err != nil {
		return nil, errInvalidCredentials
	}
	return s.jwt.GenerateTokenPair(tenantID, userID, user.Email, string(membership.Role))
}

// Logout revokes a refresh token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// RegisterUserInput creates a user with a membership
type RegisterUserInput struct {
	OrganizationID uuid.UUID
	Email          string
	Password       string
	FullName       string
	Role           string
}

// RegisterUser creates a user and attaches it to an organization. Admin only,
// enforced at the transport layer.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterUserInput) (*identity.User, error) {
	if _, err := s.repos.Organizations.FindByID(ctx, input.OrganizationID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Users.FindByEmail(ctx, input.Email); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	user, err := identity.NewUser(input.Email, input.Password, input.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	membership, err := identity.NewMembership(user.ID, input.OrganizationID, identity.MembershipRole(input.Role))
	if err != nil {
		return nil, err
	}
	if err := s.repos.Memberships.Save(ctx, membership); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateOrganizationInput bootstraps a tenant
type CreateOrganizationInput struct {
	Code string
	Name string
}

// CreateOrganization registers a new tenant
func (s *AuthService) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*identity.Organization, error) {
	if _, err := s.repos.Organizations.FindByCode(ctx, input.Code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if err != shared.ErrNotFound {
		return nil, err
	}
	org, err := identity.NewOrganization(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Organizations.Save(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Organizations lists all tenants
func (s *AuthService) Organizations(ctx context.Context) ([]identity.Organization, error) {
	return s.repos.Organizations.FindAll(ctx)
}
