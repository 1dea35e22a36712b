// Package profiles is the server side of the accessibility profile store:
// a per-user collection of named settings bundles behind the
// /users/me/a11y/profiles REST resource.
//
// Profiles travel in the flattened wire format of a11y.Profile. The service
// trusts nothing from the client: names and descriptions are sanitized and
// every bundle is validated against the default settings model.
package profiles

import (
	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// Field names reported on validation and duplicate-name errors. They match
// the wire names so a client form can highlight the offending input.
const (
	FieldProfileName = "profileName"
	FieldDescription = "description"
)

// Limits on profile text.
const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
)

// ProfileInput is the validated-later input of a create or update. The ID in
// a request body is ignored; updates take it from the path.
type ProfileInput struct {
	Name        string
	Description string
	Bundle      a11y.Bundle
}

// inputFromWire copies the user-supplied parts of a decoded wire profile.
func inputFromWire(p a11y.Profile) ProfileInput {
	return ProfileInput{
		Name:        p.Name,
		Description: p.Description,
		Bundle:      p.Bundle,
	}
}

// profileRow is a profile as stored in a11y_profiles.
type profileRow struct {
	ID               string
	UserID           string
	Name             string
	Description      string
	ContrastLevel    int
	TextSizeLevel    int
	TextSpacingLevel int
	LineHeightLevel  int
	TextAlign        string
	ScreenReader     bool
	SmartContrast    bool
	HighlightLinks   bool
	CursorHighlight  bool
}
