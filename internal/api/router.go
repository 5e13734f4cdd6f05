package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/authcore/account-service/internal/api/handler"
	"github.com/authcore/account-service/internal/api/middleware"
	"github.com/authcore/account-service/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when throttling is disabled; it is only used by the
// readiness probe.
func NewRouter(accounts ports.AccountService, store ports.AccountStore, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accountsvc"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(accounts)
	accountHandler := handler.NewAccountHandler(store)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/verify", authHandler.Verify)
	e.POST("/auth/verify/resend", authHandler.ResendVerification)
	e.POST("/auth/reset", authHandler.RequestReset)
	e.GET("/auth/reset/confirm", authHandler.CheckReset)
	e.POST("/auth/reset/confirm", authHandler.CompleteReset)

	// --- Session-protected routes ---
	e.GET("/auth/me", accountHandler.Me, middleware.Auth(jwtSecret))

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(store, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
