package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/domain/identity"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/auth"
	"github.com/cementiri/backend/internal/infrastructure/config"
	"github.com/cementiri/backend/tests/testutil"
)

func newAuthService(t *testing.T) (context.Context, *AuthService) {
	t.Helper()
	_, repos := testutil.NewTestDB(t)
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "cementiri-test",
	})
	return context.Background(), NewAuthService(repos, jwtSvc, auth.NewMemoryTokenBlacklist(), zap.NewNop())
}

func registerTestUser(t *testing.T, ctx context.Context, svc *AuthService) (*identity.Organization, *identity.User) {
	t.Helper()
	org, err := svc.CreateOrganization(ctx, CreateOrganizationInput{Code: "VNV", Name: "Ajuntament de Vilanova"})
	require.NoError(t, err)
	user, err := svc.RegisterUser(ctx, RegisterUserInput{
		OrganizationID: org.ID,
		Email:          "gestor@vilanova.cat",
		Password:       "molt-secret-1",
		FullName:       "Gestora Municipal",
		Role:           string(identity.RoleGestor),
	})
	require.NoError(t, err)
	return org, user
}

func TestLoginIssuesTokenPair(t *testing.T) {
	ctx, svc := newAuthService(t)
	org, _ := registerTestUser(t, ctx, svc)

	pair, err := svc.Login(ctx, org.Code, "gestor@vilanova.cat", "molt-secret-1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx, svc := newAuthService(t)
	org, _ := registerTestUser(t, ctx, svc)

	_, err := svc.Login(ctx, org.Code, "gestor@vilanova.cat", "wrong-password")
	require.Error(t, err)
	_, err = svc.Login(ctx, org.Code, "nobody@vilanova.cat", "molt-secret-1")
	require.Error(t, err)
	_, err = svc.Login(ctx, "NOPE", "gestor@vilanova.cat", "molt-secret-1")
	require.Error(t, err)
}

func TestLoginRequiresMembership(t *testing.T) {
	ctx, svc := newAuthService(t)
	registerTestUser(t, ctx, svc)

	// The user belongs to the first organization only.
	other, err := svc.CreateOrganization(ctx, CreateOrganizationInput{Code: "ALT", Name: "Altre Municipi"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, other.Code, "gestor@vilanova.cat", "molt-secret-1")
	require.Error(t, err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx, svc := newAuthService(t)
	org, _ := registerTestUser(t, ctx, svc)

	pair, err := svc.Login(ctx, org.Code, "gestor@vilanova.cat", "molt-secret-1")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	require.Error(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx, svc := newAuthService(t)
	org, _ := registerTestUser(t, ctx, svc)

	pair, err := svc.Login(ctx, org.Code, "gestor@vilanova.cat", "molt-secret-1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)

	// Logging out an invalid token is a silent no-op.
	require.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
	ctx, svc := newAuthService(t)
	org, _ := registerTestUser(t, ctx, svc)

	_, err := svc.RegisterUser(ctx, RegisterUserInput{
		OrganizationID: org.ID,
		Email:          "gestor@vilanova.cat",
		Password:       "una-altra-clau",
		FullName:       "Duplicat",
		Role:           string(identity.RoleLectura),
	})
	require.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCreateOrganizationRejectsDuplicateCode(t *testing.T) {
	ctx, svc := newAuthService(t)
	registerTestUser(t, ctx, svc)

	_, err := svc.CreateOrganization(ctx, CreateOrganizationInput{Code: "VNV", Name: "Clon"})
	require.ErrorIs(t, err, shared.ErrAlreadyExists)

	orgs, err := svc.Organizations(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}
