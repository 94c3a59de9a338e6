package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kinora/internal/infrastructure/auth"
	"kinora/internal/shared/constants"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth rejects requests without a valid access token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verify(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or missing authorization token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProfileID, claims.ProfileID)
		c.Set(constants.ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects everything but valid ADMIN tokens.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verify(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or missing authorization token")
			c.Abort()
			return
		}
		if claims.Role != constants.RoleAdmin {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProfileID, claims.ProfileID)
		c.Set(constants.ContextKeyRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth attaches the profile when a valid token is present and lets
// anonymous requests through untouched. Playback endpoints use it so free
// titles stay playable without an account.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := m.verify(c); ok {
			c.Set(constants.ContextKeyProfileID, claims.ProfileID)
			c.Set(constants.ContextKeyRole, claims.Role)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) verify(c *gin.Context) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := m.jwtService.Verify(parts[1])
	if err != nil {
		m.logger.Warnw("failed to verify token", "error", err)
		return nil, false
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}
