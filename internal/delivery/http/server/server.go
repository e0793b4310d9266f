package server

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/handlers"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	echo            *echo.Echo
	paylaterHandler *handlers.PayLaterHandler
	merchantHandler *handlers.MerchantHandler
	healthHandler   *handlers.HealthHandler
	gatherer        prometheus.Gatherer
	adminToken      string
}

type Options struct {
	Gatherer prometheus.Gatherer
	// AdminToken guards merchant management; routes are off when empty.
	AdminToken string
	Logger     *slog.Logger
}

func NewServer(paylaterHandler *handlers.PayLaterHandler, merchantHandler *handlers.MerchantHandler, healthHandler *handlers.HealthHandler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{
		echo:            e,
		paylaterHandler: paylaterHandler,
		merchantHandler: merchantHandler,
		healthHandler:   healthHandler,
		gatherer:        opts.Gatherer,
		adminToken:      opts.AdminToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler.Health)
	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := s.echo.Group("/api")
	api.POST("/orders", s.paylaterHandler.Checkout)

	// -------- webhooks --------
	webhooks := api.Group("/webhooks")
	webhooks.POST("/paylater", s.paylaterHandler.ProviderWebhook)
	webhooks.POST("/platform", s.paylaterHandler.PlatformWebhook)

	// -------- customer redirects --------
	api.GET("/paylater/cancel", s.paylaterHandler.CancelRedirect)

	// -------- merchant management --------
	if s.adminToken != "" && s.merchantHandler != nil {
		merchants := api.Group("/merchants", middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminToken)) == 1, nil
		}))
		merchants.PUT("", s.merchantHandler.RegisterMerchant)
		merchants.GET("/:domain", s.merchantHandler.GetMerchant)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
