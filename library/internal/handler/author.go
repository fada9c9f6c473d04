package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-management/library/internal/model"
)

// CreateAuthor godoc
// @Summary Create an author or return the identical existing one
// @Tags authors
// @Accept json
// @Produce json
// @Param author body model.AuthorRequest true "author"
// @Success 200 {object} model.Author
// @Failure 400 {object} echo.HTTPError
// @Router /api/v1/authors [post]
func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.AuthorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	author, err := h.librarySvc.CreateAuthor(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

// GetAuthors godoc
// @Summary List authors
// @Tags authors
// @Produce json
// @Success 200 {array} model.Author
// @Router /api/v1/authors [get]
func (h *Handler) GetAuthors(c echo.Context) error {
	authors, err := h.librarySvc.ListAuthors(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, nonNil(authors))
}

// GetAuthor godoc
// @Summary Get an author
// @Tags authors
// @Produce json
// @Param id path int true "author id"
// @Success 200 {object} model.Author
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/authors/{id} [get]
func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	author, err := h.librarySvc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

// UpdateAuthor godoc
// @Summary Update the given author fields
// @Tags authors
// @Accept json
// @Produce json
// @Param id path int true "author id"
// @Param patch body model.AuthorPatch true "fields to change"
// @Success 200 {object} model.Author
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/authors/{id} [patch]
func (h *Handler) UpdateAuthor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.AuthorPatch
	if err = bind(c, &patch); err != nil {
		return err
	}
	author, err := h.librarySvc.UpdateAuthor(c.Request().Context(), id, patch)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

// DeleteAuthor godoc
// @Summary Delete an author, their books stay without an author
// @Tags authors
// @Produce json
// @Param id path int true "author id"
// @Success 200 {object} model.Author
// @Failure 404 {object} echo.HTTPError
// @Router /api/v1/authors/{id} [delete]
func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	author, err := h.librarySvc.DeleteAuthor(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
