package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"bestinclick/pkg/logger"
	"bestinclick/pkg/utils"

	jsonres "bestinclick/pkg/response"

	"github.com/labstack/echo/v4"
)

type authFailure struct {
	status  int
	code    string
	message string
}

// authenticate resolves the bearer token into context values. It returns nil when
// the request carried a valid token.
func authenticate(c echo.Context, authHeader string) *authFailure {
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return &authFailure{http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format"}
	}

	tokenString := tokenParts[1]

	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		return &authFailure{http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token"}
	}

	userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || userIDUint == 0 {
		logger.Warn("Invalid user ID in token", "user_id", claims.UserID)
		return &authFailure{http.StatusForbidden, "FORBIDDEN", "Invalid user ID in token"}
	}

	c.Set("user_id", uint(userIDUint))
	c.Set("role", claims.Role)
	c.Set("token", tokenString)

	return nil
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			if f := authenticate(c, authHeader); f != nil {
				return c.JSON(f.status, jsonres.Error(f.code, f.message, nil))
			}

			return next(c)
		}
	}
}

// OptionalAuth lets anonymous shoppers through. A header that is present but
// invalid is still rejected.
func OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			if f := authenticate(c, authHeader); f != nil {
				return c.JSON(f.status, jsonres.Error(f.code, f.message, nil))
			}

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := c.Get("role")
			roleStr, ok := role.(string)
			if !ok || strings.ToUpper(roleStr) != "ADMIN" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}
