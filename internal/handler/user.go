package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/service"
)

// UserHandler handles account administration endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Users retrieved successfully!", users)
}

// Block handles PATCH /api/admin/users/block/:id.
func (h *UserHandler) Block(c echo.Context) error {
	principal, _ := GetPrincipal(c)
	user, err := h.users.Block(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user.Name+" is deactivated successfully!", user)
}

// Unblock handles PATCH /api/admin/users/unblock/:id.
func (h *UserHandler) Unblock(c echo.Context) error {
	principal, _ := GetPrincipal(c)
	user, err := h.users.Unblock(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user.Name+" is activated successfully!", user)
}
