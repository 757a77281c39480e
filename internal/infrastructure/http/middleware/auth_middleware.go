package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/salescribe-team/salescribe/errors"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/pkg/jwt"
)

const (
	// ClaimsContextKey is the echo context key for validated JWT claims
	ClaimsContextKey = "claims"
)

// AuthMiddleware validates bearer tokens on protected routes
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the JWT token and stores claims in the echo context
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return echo.NewHTTPError(401, "Missing authorization token")
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				return echo.NewHTTPError(appErr.HTTPCode, appErr.Message)
			}
			return echo.NewHTTPError(401, "Invalid or expired token")
		}

		c.Set(ClaimsContextKey, claims)
		return next(c)
	}
}

// RequireRole checks that the authenticated user has one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...entities.ProfileRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return echo.NewHTTPError(401, "User not authenticated")
			}
			for _, role := range roles {
				if claims.Role == string(role) {
					return next(c)
				}
			}
			return echo.NewHTTPError(403, "Insufficient permissions")
		}
	}
}

// GetClaims retrieves validated claims from the echo context
func GetClaims(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*jwt.Claims)
	return claims, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
