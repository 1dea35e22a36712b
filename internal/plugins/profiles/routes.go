package profiles

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the profile REST resource on api (the API base
// group) and the HTML list on web. Both groups share the auth middleware.
func RegisterRoutes(api, web *echo.Group, h *Handler, requireAuth echo.MiddlewareFunc) {
	res := api.Group("/users/me/a11y/profiles", requireAuth)
	res.GET("", h.List)
	res.POST("", h.Create)
	res.PUT("/:profileId", h.Update)
	res.DELETE("/:profileId", h.Delete)

	web.GET("/a11y/profiles", h.Page, requireAuth)
}
