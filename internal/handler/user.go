package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/service"
)

// UserHandler exposes the role-scoped user endpoints. All routes here
// sit behind the JWT middleware, which injects the actor's user id.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler {
	return &UserHandler{Users: u}
}

// userResponse is the external projection of a user record. Shaping
// happens here, at the boundary, so the storage schema never leaks into
// the contract.
type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	Group       string    `json:"group"`
	AvatarURL   string    `json:"image_url,omitempty"`
	IsBlocked   bool      `json:"is_blocked"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Surname:     u.Surname,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Group:       u.Group,
		AvatarURL:   u.AvatarURL,
		IsBlocked:   u.IsBlocked,
		CreatedAt:   u.CreatedAt,
		ModifiedAt:  u.ModifiedAt,
	}
}

type updateUserReq struct {
	Name        string `json:"name" form:"name"`
	Surname     string `json:"surname" form:"surname"`
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Email       string `json:"email" form:"email"`
	Role        string `json:"role" form:"role"`
	Group       string `json:"group" form:"group"`
	IsBlocked   bool   `json:"is_blocked" form:"is_blocked"`
}

func (r updateUserReq) toInput() service.UpdateInput {
	return service.UpdateInput{
		Name:        r.Name,
		Surname:     r.Surname,
		Username:    r.Username,
		Password:    r.Password,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Role:        r.Role,
		Group:       r.Group,
		IsBlocked:   r.IsBlocked,
	}
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Me(ctx, middleware.ActorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// UpdateMe applies a self-service update; identity alone authorizes it.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateMe(ctx, middleware.ActorID(c), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// DeleteMe removes the authenticated user's own record.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.DeleteMe(ctx, middleware.ActorID(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetByID returns another user's record, subject to role/group rules.
func (h *UserHandler) GetByID(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.View(ctx, middleware.ActorID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// UpdateByID applies an update to another user's record (admin only).
func (h *UserHandler) UpdateByID(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateOther(ctx, middleware.ActorID(c), c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// List returns one page of users within the actor's group scope.
// Supported query parameters: page, limit, filter_by_name, sort_by,
// order_by (asc|desc).
func (h *UserHandler) List(c echo.Context) error {
	q := service.ListQuery{
		Page:         intQuery(c, "page", 1),
		Limit:        intQuery(c, "limit", 30),
		FilterByName: c.QueryParam("filter_by_name"),
		SortBy:       c.QueryParam("sort_by"),
		OrderBy:      c.QueryParam("order_by"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, middleware.ActorID(c), q)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

func intQuery(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
