package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/userhub/auth-server/internal/api/handler"
	"github.com/userhub/auth-server/internal/api/middleware"
	"github.com/userhub/auth-server/internal/core/domain"
	"github.com/userhub/auth-server/internal/core/ports"

	_ "github.com/userhub/auth-server/docs"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Credentials ports.CredentialService
	Tokens      middleware.TokenVerifier
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "auth_http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(deps.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Users ---
	users := handler.NewUserHandler(deps.Credentials)
	auth := middleware.Auth(deps.Tokens)

	g := e.Group("/api/users")
	g.POST("/signup", users.Signup)
	g.POST("/login", users.Login)
	g.POST("/refresh-token", users.RefreshToken)

	g.POST("/logout", users.Logout, auth)
	g.GET("", users.List, auth)
	g.GET("/me", users.Me, auth)
	g.PUT("/:id", users.Update, auth)
	g.DELETE("/:id", users.Delete, auth, middleware.RBAC(domain.RoleAdmin.String()))

	return e
}
