package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/a11y-engine/internal/apperror"
)

// Context keys for session data. Other plugins read them through the
// exported getters below.
const (
	contextKeySession = "auth_session"
	contextKeyUserID  = "auth_user_id"
)

// RequireAuth returns middleware that resolves the bearer token or session
// cookie to a session and stores it on the context. Requests without a
// valid session fail with a 401 AppError, rendered by the app's error
// handler.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			session, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				if apperror.IsType(err, apperror.TypeUnauthorized) {
					clearSessionCookie(c)
				}
				return err
			}

			c.Set(contextKeySession, session)
			c.Set(contextKeyUserID, session.UserID)
			return next(c)
		}
	}
}

// GetSession returns the authenticated session, or nil when RequireAuth
// did not run.
func GetSession(c echo.Context) *Session {
	session, ok := c.Get(contextKeySession).(*Session)
	if !ok {
		return nil
	}
	return session
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
