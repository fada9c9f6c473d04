package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/model"
)

// CreateBook godoc
// @Summary Add a book, an identical title and author restocks the existing one
// @Tags books
// @Accept json
// @Produce json
// @Param book body model.CreateBookRequest true "book"
// @Success 200 {object} model.Book
// @Failure 400 {object} echo.HTTPError
// @Router /api/v1/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// GetBooks godoc
// @Summary List books with their authors
// @Tags books
// @Produce json
// @Success 200 {array} model.Book
// @Router /api/v1/books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.librarySvc.ListBooks(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, nonNil(books))
}

// GetBook godoc
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	book, err := h.librarySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// UpdateBook godoc
// @Summary Update a book and optionally its author
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "book id"
// @Param patch body model.BookPatch true "fields to change"
// @Success 200 {object} model.Book
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/books/{id} [patch]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.BookPatch
	if err = bind(c, &patch); err != nil {
		return err
	}
	book, err := h.librarySvc.UpdateBook(c.Request().Context(), id, patch)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary Delete a book without borrow records
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Router /api/v1/books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	book, err := h.librarySvc.DeleteBook(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}
