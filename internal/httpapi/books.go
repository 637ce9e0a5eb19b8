package httpapi

import (
	"net/http"

	"bookshop/internal/shop"

	"github.com/labstack/echo/v4"
)

// GET /api/books
func (s *Server) listBooks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.shop.Books.List())
}

// GET /api/books/:id
func (s *Server) getBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := s.shop.Books.Get(id)
	if err != nil {
		return s.fail(c, "get book", err)
	}
	return c.JSON(http.StatusOK, book)
}

// POST /api/books
func (s *Server) createBook(c echo.Context) error {
	var in shop.BookInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	book, err := s.shop.Books.Create(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "create book", err)
	}
	return c.JSON(http.StatusOK, book)
}

// PUT /api/books/:id
func (s *Server) updateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var patch shop.BookPatch
	if err := bindBody(c, &patch); err != nil {
		return err
	}
	book, err := s.shop.Books.Update(c.Request().Context(), id, patch)
	if err != nil {
		return s.fail(c, "update book", err)
	}
	return c.JSON(http.StatusOK, book)
}

// DELETE /api/books/:id
func (s *Server) deleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.shop.Books.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, "delete book", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully"})
}
