package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cementiri/backend/internal/infrastructure/auth"
	"github.com/cementiri/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTConfig holds JWT middleware settings
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; revoked token IDs are rejected when set
	Blacklist auth.TokenBlacklist
	SkipPaths []string
	// SkipPathPrefixes skips auth for whole subtrees (swagger, health)
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuth validates the bearer token and stores its claims in the context
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "missing bearer token")
			return
		}
		raw := strings.TrimPrefix(header, BearerPrefix)

		claims, err := cfg.JWTService.ValidateAccessToken(raw)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("token validation failed",
					zap.String("path", path), zap.Error(err))
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "invalid token")
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open on blacklist errors, availability over strictness
				if cfg.Logger != nil {
					cfg.Logger.Error("failed to check token blacklist",
						zap.String("jti", claims.ID), zap.Error(err))
				}
			} else if revoked {
				abortUnauthorized(c, dto.ErrCodeTokenInvalid, "token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Set(JWTRoleKey, claims.Role)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetJWTClaims retrieves the claims set by JWTAuth, nil when absent
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from the context
func GetJWTUserID(c *gin.Context) string {
	if v, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTTenantID retrieves the tenant ID from the context
func GetJWTTenantID(c *gin.Context) string {
	if v, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTRole retrieves the membership role from the context
func GetJWTRole(c *gin.Context) string {
	if v, exists := c.Get(JWTRoleKey); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// RequireWriteRole rejects read-only sessions on mutating endpoints
func RequireWriteRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role == "" {
			// no claims means the route was skipped by JWTAuth (dev headers)
			c.Next()
			return
		}
		if role != "ADMIN" && role != "GESTOR" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "role does not allow write operations"))
			return
		}
		c.Next()
	}
}

// RequireAdminRole restricts an endpoint to ADMIN sessions
func RequireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := GetJWTRole(c); role != "ADMIN" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "admin role required"))
			return
		}
		c.Next()
	}
}
