package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nrednav/cuid2"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"gamehub/internal/auth"
	"gamehub/internal/config"
	"gamehub/internal/handler"
	"gamehub/internal/middleware"
)

// Dependencies are the components the routes are wired to.
type Dependencies struct {
	AuthHandler  *handler.AuthHandler
	UserHandler  *handler.UserHandler
	SessionGuard echo.MiddlewareFunc
	// SessionParser only decodes the cookie. Used where a dead session must
	// still be accepted.
	SessionParser echo.MiddlewareFunc
	RateLimiter   *middleware.RateLimiter
	// Registry receives HTTP metrics and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: cuid2.Generate,
	}))
	e.Use(requestLogger(logger))
	e.Use(echomw.Recover())
	if deps.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "gamehub",
			Registerer: deps.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: deps.Registry,
		}))
	}
	if cfg.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
			Timeout: cfg.RequestTimeout,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	var limited []echo.MiddlewareFunc
	if deps.RateLimiter != nil {
		limited = append(limited, deps.RateLimiter.Middleware())
	}

	authGroup := e.Group("/auth")

	// Public routes
	authGroup.POST("/user-management/add-user", deps.AuthHandler.AddUser, limited...)
	authGroup.POST("/signIn", deps.AuthHandler.SignIn, limited...)
	authGroup.POST("/verify-otp", deps.AuthHandler.VerifyOTP, limited...)
	authGroup.POST("/resend-otp", deps.AuthHandler.ResendOTP, limited...)

	// Session routes
	authGroup.POST("/signOut", deps.AuthHandler.SignOut, deps.SessionParser)
	authGroup.POST("/me", deps.AuthHandler.Me, deps.SessionGuard)

	// Admin routes
	admin := e.Group("/admin", deps.SessionGuard, middleware.RequireRole(auth.AdminOnly, logger))
	admin.GET("/users", deps.UserHandler.ListUsers)
	admin.GET("/users/:id", deps.UserHandler.GetUser)
	admin.PATCH("/users/:id/status", deps.UserHandler.UpdateStatus)
	admin.PATCH("/users/:id/role", deps.UserHandler.UpdateRole)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
