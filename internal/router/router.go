// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/token"
)

// RegisterRoutes registers routes that require no authentication.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token lifecycle endpoints under /v1/auth.
// None of them require an existing session; the rate limiter guards
// them against brute force.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.RefreshToken)
	g.POST("/reset-password", a.ResetPassword)
	g.POST("/set-new-password", a.SetNewPassword)
}

// RegisterUsers registers the user endpoints under /v1/users. Every
// route requires a valid access token; role and group checks happen in
// the service layer against the store, not against token claims.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, codec *token.Codec) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(codec))

	g.GET("/me", u.Me)
	g.PATCH("/me", u.UpdateMe)
	g.DELETE("/me", u.DeleteMe)

	g.GET("", u.List)
	g.GET("/:id", u.GetByID)
	g.PATCH("/:id", u.UpdateByID)
}
