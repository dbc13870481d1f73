package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tasknest/todo-api/internal/api/handler"
	"github.com/tasknest/todo-api/internal/api/middleware"
	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Logger    zerolog.Logger
	Auth      ports.AuthService
	Tokens    ports.TokenService
	Tasks     ports.TaskService
	AccessTTL time.Duration

	// Checks are run by GET /health/ready, keyed by dependency name.
	Checks map[string]handlers.Check

	// Registerer receives the HTTP metrics. Nil disables them.
	Registerer prometheus.Registerer

	// Authenticator replaces the bearer token middleware when set.
	Authenticator echo.MiddlewareFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "todo",
			Subsystem:  "http",
			Registerer: deps.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
			},
		}))
	}

	authMiddleware := deps.Authenticator
	if authMiddleware == nil {
		authMiddleware = middleware.Auth(deps.Tokens)
	}

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Tokens, deps.AccessTTL)
	taskHandler := handler.NewTaskHandler(deps.Tasks)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/sign-up/email", authHandler.SignUp)
	auth.POST("/sign-in/email", authHandler.SignIn)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authMiddleware)

	// --- Task routes (owner is always the caller) ---
	tasks := v1.Group("/tasks", authMiddleware)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PATCH("/:id/complete", taskHandler.Complete)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks, deps.Logger)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
