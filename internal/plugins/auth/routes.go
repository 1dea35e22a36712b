package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the public auth endpoints on g (the API group).
// Login and register are rate limited by the given middleware to slow down
// credential stuffing.
func RegisterRoutes(g *echo.Group, h *Handler, loginLimit, registerLimit echo.MiddlewareFunc) {
	g.POST("/auth/register", h.Register, registerLimit)
	g.POST("/auth/login", h.Login, loginLimit)
	g.POST("/auth/logout", h.Logout)
}
