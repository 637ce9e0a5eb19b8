package httpapi

import (
	"net/http"

	"bookshop/internal/shop"

	"github.com/labstack/echo/v4"
)

// GET /api/customers
func (s *Server) listCustomers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.shop.Customers.List())
}

// GET /api/customers/:id
func (s *Server) getCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	customer, err := s.shop.Customers.Get(id)
	if err != nil {
		return s.fail(c, "get customer", err)
	}
	return c.JSON(http.StatusOK, customer)
}

// POST /api/customers
func (s *Server) createCustomer(c echo.Context) error {
	var in shop.CustomerInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	customer, err := s.shop.Customers.Create(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, "create customer", err)
	}
	return c.JSON(http.StatusOK, customer)
}

// PUT /api/customers/:id
func (s *Server) updateCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var patch shop.CustomerPatch
	if err := bindBody(c, &patch); err != nil {
		return err
	}
	customer, err := s.shop.Customers.Update(c.Request().Context(), id, patch)
	if err != nil {
		return s.fail(c, "update customer", err)
	}
	return c.JSON(http.StatusOK, customer)
}

// DELETE /api/customers/:id
func (s *Server) deleteCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.shop.Customers.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, "delete customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}

// GET /api/customers/:id/rentals
func (s *Server) customerRentals(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rentals, err := s.shop.Rentals.ForCustomer(id)
	if err != nil {
		return s.fail(c, "list customer rentals", err)
	}
	return c.JSON(http.StatusOK, rentals)
}
