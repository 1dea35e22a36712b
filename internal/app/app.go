// Package app is the bootstrap and dependency injection root of the profile
// service. It holds the shared infrastructure (DB pool, Redis client, Echo
// instance) and wires the auth and profiles plugins onto it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/a11y-engine/internal/apperror"
	"github.com/keyxmakerx/a11y-engine/internal/config"
	"github.com/keyxmakerx/a11y-engine/internal/middleware"
	"github.com/keyxmakerx/a11y-engine/internal/plugins/auth"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins.
	DB *sql.DB

	// Redis is the Redis client shared for sessions and the profile cache.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// limiters are stopped on shutdown so their janitors exit.
	limiters []*middleware.RateLimiter
}

// errorBody is the JSON error envelope of the REST API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Field   string `json:"field,omitempty"`
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustedProxies(e, cfg.HTTP.TrustedProxies)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger(auth.GetUserID))
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   a.Config.HTTP.AllowedOrigins,
		AllowCredentials: true,
	}))
	a.Echo.Use(middleware.CSRF())
}

// newRateLimiter creates a limiter whose janitor is stopped by Shutdown.
func (a *App) newRateLimiter(perMinute int) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(perMinute, time.Minute)
	a.limiters = append(a.limiters, rl)
	return rl
}

// errorHandler maps domain errors to the JSON error envelope. Internal
// causes are logged and never sent to the client.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorBody{Message: defaultErrorMessage(code), Type: apperror.TypeInternal}

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		body.Message, body.Type, body.Field = appErr.Message, appErr.Type, appErr.Field
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		body.Type = typeForStatus(code)
		if msg, ok := echoErr.Message.(string); ok {
			body.Message = msg
		} else {
			body.Message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}
	body.Error = http.StatusText(code)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

// typeForStatus picks the machine-readable type of a router error.
func typeForStatus(code int) string {
	switch code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return apperror.TypeBadRequest
	case http.StatusUnauthorized:
		return apperror.TypeUnauthorized
	case http.StatusForbidden:
		return apperror.TypeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperror.TypeNotFound
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if code >= 500 {
		return apperror.TypeInternal
	}
	return strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))
}

// defaultErrorMessage returns a user-friendly message for common HTTP status
// codes when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to sign in to manage accessibility profiles."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The resource you're looking for doesn't exist."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting a11y profile service",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains in-flight requests and stops background workers.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	for _, rl := range a.limiters {
		rl.Stop()
	}
	return err
}
