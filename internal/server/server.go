package server

import (
	"context"
	"net/http"

	"ucp-merchant-demo/internal/handler"
	appmw "ucp-merchant-demo/internal/middleware"
	"ucp-merchant-demo/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo             *echo.Echo
	checkoutHandler  *handler.CheckoutHandler
	discoveryHandler *handler.DiscoveryHandler
	mcpHandler       *handler.MCPHandler
}

func NewServer(merchantService service.MerchantService, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	e.Use(appmw.RequestContext())
	e.Use(appmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:             e,
		checkoutHandler:  handler.NewCheckoutHandler(merchantService),
		discoveryHandler: handler.NewDiscoveryHandler(merchantService),
		mcpHandler:       handler.NewMCPHandler(merchantService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- discovery --------
	s.echo.GET("/.well-known/ucp", s.discoveryHandler.Profile)
	s.echo.GET("/products/search", s.discoveryHandler.SearchProducts)
	s.echo.GET("/products/:id", s.discoveryHandler.GetProduct)

	// -------- checkout --------
	sessions := s.echo.Group("/checkout-sessions")
	sessions.POST("", s.checkoutHandler.CreateCheckout)
	sessions.GET("/:id", s.checkoutHandler.GetCheckout)
	sessions.PUT("/:id", s.checkoutHandler.UpdateCheckout)
	sessions.POST("/:id/complete", s.checkoutHandler.CompleteCheckout)

	s.echo.GET("/orders/:id", s.checkoutHandler.GetOrder)

	// -------- mcp --------
	s.echo.Any("/mcp", echo.WrapHandler(s.mcpHandler.HTTPHandler()))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
