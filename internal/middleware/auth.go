package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/victorydiv/fojournapp-sub002/pkg/jwtutil"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"go.uber.org/zap"
)

// UserIDContextKey is where the authenticated account id is stored in the
// echo context
const UserIDContextKey = "user_id"

// JWTAuthMiddleware creates a middleware that validates JWT tokens issued by
// the auth service and exposes the caller's account id to handlers
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			// Check if the header format is valid
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header format"})
			}

			// Validate the token
			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store the caller identity in the context for handlers
			c.Set(UserIDContextKey, claims.UserID)
			c.Set("user", claims)
			log.Debug("JWT token validated successfully",
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// UserID returns the authenticated account id from the echo context
func UserID(c echo.Context) (uint, bool) {
	userID, ok := c.Get(UserIDContextKey).(uint)
	return userID, ok
}
