package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/service"
	"github.com/boulevard/bicycles/internal/validation"
)

const refreshCookie = "refreshToken"

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	validator    *validation.Validator
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the refresh
// cookie Secure.
func NewAuthHandler(auth *service.AuthService, v *validation.Validator, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, validator: v, secureCookie: secureCookie}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), service.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, "User registered successfully!", user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	user, tokens, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return JSON(c, http.StatusOK, "Login successful!", map[string]any{
		"user":  user,
		"token": tokens.AccessToken,
	})
}

// Refresh handles POST /api/auth/refresh-token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}

	access, err := h.auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Successfully retrieved new access token!", map[string]string{"token": access})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	principal, _ := GetPrincipal(c)
	user, err := h.auth.CurrentUser(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "User retrieved successfully!", user)
}
