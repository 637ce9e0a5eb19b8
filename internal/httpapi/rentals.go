package httpapi

import (
	"net/http"

	"bookshop/internal/shop"

	"github.com/labstack/echo/v4"
)

// GET /api/rentals
func (s *Server) listRentals(c echo.Context) error {
	rentals, err := s.shop.Rentals.ListWithDetails(c.Request().Context())
	if err != nil {
		return s.fail(c, "list rentals", err)
	}
	return c.JSON(http.StatusOK, rentals)
}

// GET /api/rentals/:id
func (s *Server) getRental(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rental, err := s.shop.Rentals.GetWithDetails(id)
	if err != nil {
		return s.fail(c, "get rental", err)
	}
	return c.JSON(http.StatusOK, rental)
}

// POST /api/rentals
func (s *Server) createRental(c echo.Context) error {
	var in shop.RentalInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	rental, err := s.shop.Rentals.Create(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "create rental", err)
	}
	return c.JSON(http.StatusOK, rental)
}

// PUT /api/rentals/:id/return
func (s *Server) returnRental(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rental, err := s.shop.Rentals.Return(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "return book", err)
	}
	return c.JSON(http.StatusOK, rental)
}

// DELETE /api/rentals/:id
func (s *Server) deleteRental(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.shop.Rentals.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, "delete rental", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rental deleted successfully"})
}

// GET /api/rentals/overdue/list
func (s *Server) listOverdue(c echo.Context) error {
	rentals, err := s.shop.Rentals.ListOverdue(c.Request().Context())
	if err != nil {
		return s.fail(c, "list overdue rentals", err)
	}
	return c.JSON(http.StatusOK, rentals)
}

// GET /api/rentals/stats/overview
func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.shop.Rentals.Stats())
}
