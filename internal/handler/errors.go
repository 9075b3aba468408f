package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/service"
)

// writeError maps the service error taxonomy onto HTTP responses. Every
// handler funnels its failures through here so the mapping stays in one
// place and internals never leak to clients.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, service.ErrInsufficientRights):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient access rights"})
	case errors.Is(err, service.ErrInvalidEmailFormat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	case errors.Is(err, service.ErrDispatchFailed):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send reset email"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
