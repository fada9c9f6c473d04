package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/model"
)

// CreateBorrow godoc
// @Summary Lend a copy of a book
// @Tags borrows
// @Accept json
// @Produce json
// @Param borrow body model.CreateBorrowRequest true "borrow"
// @Success 201 {object} model.Borrow
// @Failure 400 {object} echo.HTTPError "invalid input or no copies available"
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/borrows [post]
func (h *Handler) CreateBorrow(c echo.Context) error {
	var req model.CreateBorrowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	borrow, err := h.librarySvc.CreateBorrow(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, borrow)
}

// GetBorrows godoc
// @Summary List borrows
// @Tags borrows
// @Produce json
// @Success 200 {array} model.Borrow
// @Router /api/v1/borrows [get]
func (h *Handler) GetBorrows(c echo.Context) error {
	borrows, err := h.librarySvc.ListBorrows(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, nonNil(borrows))
}

// GetBorrow godoc
// @Summary Get a borrow
// @Tags borrows
// @Produce json
// @Param id path int true "borrow id"
// @Success 200 {object} model.Borrow
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/borrows/{id} [get]
func (h *Handler) GetBorrow(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	borrow, err := h.librarySvc.GetBorrow(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, borrow)
}

// ReturnBorrow godoc
// @Summary Return a borrowed copy
// @Tags borrows
// @Accept json
// @Produce json
// @Param id path int true "borrow id"
// @Param return_date query string false "YYYY-MM-DD, or in the body"
// @Param body body model.ReturnBorrowRequest false "return date"
// @Success 200 {object} model.Borrow
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError "already returned"
// @Router /api/v1/borrows/{id}/return [patch]
func (h *Handler) ReturnBorrow(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	returnDate := c.QueryParam("return_date")
	if returnDate == "" {
		var req model.ReturnBorrowRequest
		if err = bindOptional(c, &req); err != nil {
			return err
		}
		returnDate = req.ReturnDate
	}
	if returnDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "return_date is required")
	}

	borrow, err := h.librarySvc.ReturnBorrow(c.Request().Context(), id, returnDate)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, borrow)
}
