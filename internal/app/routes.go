package app

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/keyxmakerx/a11y-engine/internal/plugins/auth"
	"github.com/keyxmakerx/a11y-engine/internal/plugins/profiles"
)

// RegisterRoutes sets up all application routes. This is the single place
// where plugin routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check for container orchestration.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group(a.Config.APIBasePath, echomw.BodyLimit("64K"))
	web := e.Group("")

	// --- Auth plugin ---
	authRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(authRepo, a.Redis, a.Config.Auth.SessionTTL)
	authHandler := auth.NewHandler(authService)

	loginLimit := a.newRateLimiter(a.Config.Auth.LoginRateLimit)
	registerLimit := a.newRateLimiter(max(a.Config.Auth.LoginRateLimit/2, 1))
	auth.RegisterRoutes(api, authHandler, loginLimit.Middleware(), registerLimit.Middleware())

	requireAuth := auth.RequireAuth(authService)

	// --- Profiles plugin ---
	profileRepo := profiles.NewProfileRepository(a.DB)
	profileService := profiles.NewProfileService(profileRepo, a.Redis, a.Config.Cache.ProfileListTTL)
	profiles.RegisterRoutes(api, web, profiles.NewHandler(profileService), requireAuth)
}
