package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appidentity "github.com/cementiri/backend/internal/application/identity"
)

// AuthHandler exposes login, refresh, logout and tenant administration
type AuthHandler struct {
	BaseHandler
	auth *appidentity.AuthService
}

// NewAuthHandler creates the handler
func NewAuthHandler(auth *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest is the login payload
type LoginRequest struct {
	OrgCode  string `json:"org_code" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary  Log in to an organization
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body LoginRequest true "credentials"
// @Success  200 {object} dto.Response
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), req.OrgCode, req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh godoc
// @Summary  Exchange a refresh token for a new pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body RefreshRequest true "refresh token"
// @Success  200 {object} dto.Response
// @Router   /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// Logout godoc
// @Summary  Revoke a refresh token
// @Tags     auth
// @Accept   json
// @Success  204
// @Router   /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterUserRequest creates a user inside an organization
type RegisterUserRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FullName       string `json:"full_name"`
	Role           string `json:"role" binding:"required,oneof=ADMIN GESTOR LECTURA"`
}

// RegisterUser godoc
// @Summary  Create a user with a membership
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body RegisterUserRequest true "user"
// @Success  201 {object} dto.Response
// @Router   /auth/users [post]
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		h.BadRequest(c, "invalid organization_id")
		return
	}
	user, err := h.auth.RegisterUser(c.Request.Context(), appidentity.RegisterUserInput{
		OrganizationID: orgID,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"id": user.ID, "email": user.Email, "full_name": user.FullName})
}

// CreateOrganizationRequest bootstraps a tenant
type CreateOrganizationRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateOrganization godoc
// @Summary  Register a new organization
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body CreateOrganizationRequest true "organization"
// @Success  201 {object} dto.Response
// @Router   /organizations [post]
func (h *AuthHandler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	org, err := h.auth.CreateOrganization(c.Request.Context(), appidentity.CreateOrganizationInput{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, org)
}

// ListOrganizations godoc
// @Summary  List organizations
// @Tags     auth
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /organizations [get]
func (h *AuthHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.auth.Organizations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orgs)
}
