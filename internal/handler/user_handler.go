package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "gamehub/internal/errors"
	"gamehub/internal/model"
	"gamehub/internal/service"
)

// UserHandler serves admin user management.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UsersResponse wraps a list of accounts.
type UsersResponse struct {
	Users []model.User `json:"users"`
}

// UpdateStatusRequest changes an account's lifecycle state.
type UpdateStatusRequest struct {
	Status model.AccountStatus `json:"status" validate:"required"`
}

// UpdateRoleRequest changes an account's role.
type UpdateRoleRequest struct {
	Role model.Role `json:"role" validate:"required"`
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security SessionCookie
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @Summary Get user by id
// @Tags admin
// @Produce json
// @Security SessionCookie
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// UpdateStatus godoc
// @Summary Change account status
// @Description Suspending or deactivating an account ends its sessions at their next request.
// @Tags admin
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path int true "User ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/status [patch]
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// UpdateRole godoc
// @Summary Change account role
// @Tags admin
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path int true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(id), nil
}
