package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-management/library/internal/errs"
)

func (h *Handler) httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrOutOfStock):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}

// bind decodes the body and runs the struct validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	return validateRequest(c, req)
}

// bindOptional is bind for requests whose body may be missing; an empty
// body leaves req untouched.
func bindOptional(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err)
	}
	return validateRequest(c, req)
}

func bindError(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return echo.NewHTTPError(http.StatusBadRequest, httpErr.Message)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func validateRequest(c echo.Context, req interface{}) error {
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
