package profiles

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/apperror"
	"github.com/keyxmakerx/a11y-engine/internal/middleware"
	"github.com/keyxmakerx/a11y-engine/internal/plugins/auth"
)

// maxBodyBytes caps a profile request body.
const maxBodyBytes = 16 << 10

// Handler serves the profile endpoints. Bind, call service, respond.
type Handler struct {
	service ProfileService
}

// NewHandler creates a new profile handler.
func NewHandler(service ProfileService) *Handler {
	return &Handler{service: service}
}

// List returns the caller's profiles (GET /users/me/a11y/profiles).
func (h *Handler) List(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return apperror.NewMissingContext()
	}

	profiles, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// Create stores a new profile (POST /users/me/a11y/profiles).
func (h *Handler) Create(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return apperror.NewMissingContext()
	}

	input, err := bindProfile(c)
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update overwrites a profile (PUT /users/me/a11y/profiles/:profileId).
func (h *Handler) Update(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return apperror.NewMissingContext()
	}

	input, err := bindProfile(c)
	if err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), userID, c.Param("profileId"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a profile (DELETE /users/me/a11y/profiles/:profileId).
func (h *Handler) Delete(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return apperror.NewMissingContext()
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("profileId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Page renders the caller's profiles as HTML (GET /a11y/profiles).
func (h *Handler) Page(c echo.Context) error {
	userID := auth.GetUserID(c)
	if userID == "" {
		return apperror.NewMissingContext()
	}

	profiles, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	var name string
	if session := auth.GetSession(c); session != nil {
		name = session.Name
	}
	return middleware.Render(c, http.StatusOK, ProfileListPage(name, profiles, middleware.GetCSRFToken(c)))
}

// bindProfile decodes the flattened wire profile. A body that is not a JSON
// object is a 400; a well-formed object with mistyped fields is a 422.
func bindProfile(c echo.Context) (ProfileInput, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return ProfileInput{}, apperror.NewBadRequest("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return ProfileInput{}, apperror.NewBadRequest("request body too large")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return ProfileInput{}, apperror.NewBadRequest("invalid JSON body")
	}

	p, err := a11y.DecodeProfileBytes(body)
	if err != nil {
		return ProfileInput{}, apperror.NewValidation("profile fields have the wrong type")
	}
	return inputFromWire(p), nil
}
