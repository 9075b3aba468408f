// Package middleware provides reusable HTTP middleware: bearer-token
// authentication and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/token"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject into the request context under
// "user_id". Only the access kind is accepted here: refresh and reset
// tokens must never authorize API calls. No role is read from the
// token — privileged handlers look the role up fresh from the store.
func JWTAuth(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := codec.Decode(raw, token.KindAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", claims.UserID)
			return next(c)
		}
	}
}

// ActorID extracts the authenticated user id stored by JWTAuth.
func ActorID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
