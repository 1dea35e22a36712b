// Package middleware provides the HTTP middleware of the profile service.
// Global middleware is registered in internal/app/app.go; route-scoped
// middleware (rate limits, CSRF) in internal/app/routes.go.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger returns middleware that logs every request once it has
// completed: method, path, status, latency, client IP and the
// authenticated user when there is one. 5xx logs at error, 4xx at warn.
func RequestLogger(userID func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response first so the
				// status below is the one the client sees.
				c.Error(err)
				err = nil
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if userID != nil {
				if id := userID(c); id != "" {
					attrs = append(attrs, slog.String("user_id", id))
				}
			}

			level := slog.LevelInfo
			switch {
			case res.Status >= 500:
				level = slog.LevelError
			case res.Status >= 400:
				level = slog.LevelWarn
			}

			slog.LogAttrs(req.Context(), level, "request", attrs...)
			return err
		}
	}
}
