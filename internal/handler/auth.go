package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/service"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth    *service.AuthService
	Refresh *service.RefreshService
	Reset   *service.ResetService
	Avatars *utils.AvatarUploader // nil when image storage is not configured
}

func NewAuthHandler(a *service.AuthService, r *service.RefreshService, p *service.ResetService, av *utils.AvatarUploader) *AuthHandler {
	return &AuthHandler{Auth: a, Refresh: r, Reset: p, Avatars: av}
}

// ----- DTOs -----

type signupReq struct {
	Name        string `json:"name" form:"name"`
	Surname     string `json:"surname" form:"surname"`
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Email       string `json:"email" form:"email"`
	Role        string `json:"role" form:"role"`
	Group       string `json:"group" form:"group"`
}

type loginReq struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Password    string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type setPasswordReq struct {
	NewPassword string `json:"new_password" form:"new_password"`
}

// Signup creates a new account. An optional multipart "image" part is
// uploaded to object storage first; an upload failure only drops the
// avatar, never the signup itself.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	avatarURL := ""
	if file, err := c.FormFile("image"); err == nil && file != nil && h.Avatars != nil {
		url, err := h.Avatars.Upload(file)
		if err != nil {
			log.Printf("signup: avatar upload failed, continuing without image: %v", err)
		} else {
			avatarURL = url
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Signup(ctx, service.SignupInput{
		Name:        req.Name,
		Surname:     req.Surname,
		Username:    req.Username,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Role:        req.Role,
		Group:       req.Group,
		AvatarURL:   avatarURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResponse(u))
}

// Login verifies credentials and returns a fresh token pair. Either
// both tokens come back or an error does; there is no partial state.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Password) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "password is required"})
	}
	identifier := firstNonEmpty(req.Username, req.Email, req.PhoneNumber)
	if identifier == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "one of username, email or phone_number is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Authenticate(ctx, identifier, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	pair, err := h.Auth.IssueTokenPair(u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshToken rotates a refresh token: the presented token is revoked
// and a brand-new pair issued.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, _, err := h.Refresh.Rotate(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// ResetPassword issues a reset token for the account behind the email
// and dispatches the notification through the message channel.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		var body struct {
			Email string `json:"email" form:"email"`
		}
		if err := c.Bind(&body); err == nil {
			email = body.Email
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Reset.RequestReset(ctx, email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reset email sent successfully"})
}

// SetNewPassword redeems a reset token and stores the new credential.
func (h *AuthHandler) SetNewPassword(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	var req setPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reset.RedeemReset(ctx, raw, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
