package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/model"
)

// Register godoc
// @Summary Register a user and send a welcome email
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.RegisterRequest true "user"
// @Success 201 {object} model.User
// @Failure 400 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError "username taken"
// @Router /api/v1/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.librarySvc.Register(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body model.LoginRequest true "credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} echo.HTTPError
// @Router /api/v1/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
