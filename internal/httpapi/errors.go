package httpapi

import (
	"errors"
	"net/http"

	"bookshop/internal/shop"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type idParam struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

// pathID reads and checks the :id path parameter
func pathID(c echo.Context) (int64, error) {
	var p idParam
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &p); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	if err := c.Validate(&p); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return p.ID, nil
}

// bindBody decodes the JSON request body into dst
func bindBody(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}
	return nil
}

// fail converts a shop error to a JSON error response
func (s *Server) fail(c echo.Context, op string, err error) error {
	switch shop.Code(err) {
	case shop.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case shop.ErrValidation, shop.ErrConflict:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	s.logger.Error("Request failed",
		zap.String("op", op),
		zap.String("req_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to " + op})
}

// handleHTTPError renders echo errors (unknown routes, bad input) in the API's error shape
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		s.logger.Error("Unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
