package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookshop/internal/shop"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Options configures the HTTP server
type Options struct {
	Addr        string
	ServiceName string
	CORSOrigin  string
	BotMode     string       // "disabled", "polling" or "webhook"
	Webhook     http.Handler // mounted on /telegram-webhook when set
}

// Server exposes the shop over a JSON API
type Server struct {
	echo   *echo.Echo
	shop   *shop.Shop
	opts   Options
	logger *zap.Logger
	server *http.Server
}

// NewServer builds the echo instance with middleware and routes
func NewServer(s *shop.Shop, opts Options, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.JSONSerializer = jsonSerializer{}

	srv := &Server{
		echo:   e,
		shop:   s,
		opts:   opts,
		logger: logger,
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      e,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
	e.HTTPErrorHandler = srv.handleHTTPError

	registerMiddlewares(e, opts.CORSOrigin, logger)
	srv.registerRoutes()
	return srv
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.root)
	s.echo.GET("/health", s.health)
	if s.opts.Webhook != nil {
		s.echo.POST("/telegram-webhook", echo.WrapHandler(s.opts.Webhook))
	}

	api := s.echo.Group("/api")

	books := api.Group("/books")
	books.GET("", s.listBooks)
	books.POST("", s.createBook)
	books.GET("/:id", s.getBook)
	books.PUT("/:id", s.updateBook)
	books.DELETE("/:id", s.deleteBook)

	customers := api.Group("/customers")
	customers.GET("", s.listCustomers)
	customers.POST("", s.createCustomer)
	customers.GET("/:id", s.getCustomer)
	customers.PUT("/:id", s.updateCustomer)
	customers.DELETE("/:id", s.deleteCustomer)
	customers.GET("/:id/rentals", s.customerRentals)

	rentals := api.Group("/rentals")
	rentals.GET("", s.listRentals)
	rentals.POST("", s.createRental)
	rentals.GET("/overdue/list", s.listOverdue)
	rentals.GET("/stats/overview", s.stats)
	rentals.GET("/:id", s.getRental)
	rentals.PUT("/:id/return", s.returnRental)
	rentals.DELETE("/:id", s.deleteRental)
}

// Start serves on Options.Addr until Shutdown is called. After Shutdown it returns nil at once.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Bookstore API is running!",
		"service":   s.opts.ServiceName,
		"bot":       s.opts.BotMode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) health(c echo.Context) error {
	if err := s.shop.Healthy(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
