package server

import (
	"context"
	"net/http"
	"reviewpromax/internal/handler"
	authmw "reviewpromax/internal/middleware"
	"reviewpromax/internal/service"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	JWTSecret      string
	ChatRatePerMin float64
}

type Services struct {
	Paypal   service.PaypalService
	Checkout service.CardCheckoutService
	Chat     service.ChatService
	User     service.UserService
	Account  service.AccountService
}

type Server struct {
	echo             *echo.Echo
	opts             Options
	paypalHandler    *handler.PaypalHandler
	braintreeHandler *handler.BraintreeHandler
	chatHandler      *handler.ChatHandler
	userHandler      *handler.UserHandler
	accountHandler   *handler.AccountHandler
}

func NewServer(opts Options, services Services, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			"x-client-info",
			"apikey",
		},
	}))
	e.Use(requestLogger(log))

	s := &Server{
		echo:             e,
		opts:             opts,
		paypalHandler:    handler.NewPaypalHandler(services.Paypal, log),
		braintreeHandler: handler.NewBraintreeHandler(services.Checkout),
		chatHandler:      handler.NewChatHandler(services.Chat),
		userHandler:      handler.NewUserHandler(services.User),
		accountHandler:   handler.NewAccountHandler(services.Account),
	}

	s.setupRoutes()
	return s
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

func (s *Server) chatRateLimiter() echo.MiddlewareFunc {
	perSecond := s.opts.ChatRatePerMin / 60
	burst := int(s.opts.ChatRatePerMin)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		},
	))
}

func (s *Server) setupRoutes() {
	auth := authmw.AuthMiddleware(s.opts.JWTSecret)
	chatLimit := s.chatRateLimiter()

	// -------- legacy function routes --------
	fn := s.echo.Group("/functions/v1")
	fn.POST("/create-paypal-order", s.paypalHandler.CreateOrderLegacy, auth)
	fn.POST("/capture-paypal-order", s.paypalHandler.CaptureOrderLegacy, auth)
	fn.POST("/fix-pending-payments", s.paypalHandler.ReconcilePending, auth)
	fn.POST("/ai-chatbot", s.chatHandler.Chat, chatLimit)
	fn.POST("/delete-user", s.userHandler.DeleteUser, auth)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/payments", s.accountHandler.ListPayments, auth)
	api.GET("/plans", s.accountHandler.ListPlans, auth)
	api.POST("/chat", s.chatHandler.Chat, chatLimit)
	api.POST("/admin/users/delete", s.userHandler.DeleteUser, auth)

	// -------- paypal --------
	paypal := api.Group("/paypal")
	paypal.POST("/orders", s.paypalHandler.CreateOrder, auth)
	paypal.POST("/orders/capture", s.paypalHandler.CaptureOrder, auth)
	paypal.POST("/reconcile", s.paypalHandler.ReconcilePending, auth)

	// -------- paypal webhooks --------
	paypal.POST("/webhook", s.paypalHandler.PayPalWebhook)

	// -------- braintree --------
	api.POST("/braintree/checkout", s.braintreeHandler.ProcessCheckout, auth)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
