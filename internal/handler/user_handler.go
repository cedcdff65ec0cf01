package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the authenticated identity.
type UserHandler struct{}

// NewUserHandler creates a handler layer.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// MeResponse carries the public fields of the current user.
type MeResponse struct {
	Name string `json:"name"`
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MeResponse{Name: user.Name})
}
