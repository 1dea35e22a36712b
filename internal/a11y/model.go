// Package a11y holds the accessibility settings engine shared by the
// storefront client and the profile service: the settings model (which
// dimensions exist and what values they accept), the process-wide settings
// store, and the flattened profile wire format.
//
// Nothing in this package touches a document or the network. Effects live in
// a11y/effects, presentation logic in a11y/panel, and the remote profile
// gateway in profileclient.
package a11y

import (
	"errors"
	"fmt"
)

// Dimension names one axis of a settings bundle. The string values match the
// JSON field names used on the wire.
type Dimension string

const (
	DimContrast        Dimension = "contrastLevel"
	DimTextSize        Dimension = "textSizeLevel"
	DimTextSpacing     Dimension = "textSpacingLevel"
	DimLineHeight      Dimension = "lineHeightLevel"
	DimTextAlign       Dimension = "textAlign"
	DimScreenReader    Dimension = "screenReader"
	DimSmartContrast   Dimension = "smartContrast"
	DimHighlightLinks  Dimension = "highlightLinks"
	DimCursorHighlight Dimension = "cursorHighlight"
)

// dimensionOrder is the declaration order used for validation and listing.
var dimensionOrder = []Dimension{
	DimContrast,
	DimTextSize,
	DimTextSpacing,
	DimLineHeight,
	DimTextAlign,
	DimScreenReader,
	DimSmartContrast,
	DimHighlightLinks,
	DimCursorHighlight,
}

// Dimensions returns every dimension in declaration order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// TextAlign is the root text alignment of the document.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// alignCycle is the fixed button-driven order: left, center, right, left.
var alignCycle = []TextAlign{AlignLeft, AlignCenter, AlignRight}

// Valid reports whether a is one of the three alignments.
func (a TextAlign) Valid() bool {
	for _, v := range alignCycle {
		if v == a {
			return true
		}
	}
	return false
}

// NextAlign returns the alignment after a in the left, center, right cycle.
// An unknown alignment restarts the cycle at left.
func NextAlign(a TextAlign) TextAlign {
	for i, v := range alignCycle {
		if v == a {
			return alignCycle[(i+1)%len(alignCycle)]
		}
	}
	return AlignLeft
}

// Bundle is the complete set of accommodation values currently in effect.
// Every field is always populated; the zero value is not a valid bundle
// because TextAlign must be set, so start from Model.DefaultBundle.
type Bundle struct {
	ContrastLevel    int       `json:"contrastLevel"`
	TextSizeLevel    int       `json:"textSizeLevel"`
	TextSpacingLevel int       `json:"textSpacingLevel"`
	LineHeightLevel  int       `json:"lineHeightLevel"`
	TextAlign        TextAlign `json:"textAlign"`
	ScreenReader     bool      `json:"screenReader"`
	SmartContrast    bool      `json:"smartContrast"`
	HighlightLinks   bool      `json:"highlightLinks"`
	CursorHighlight  bool      `json:"cursorHighlight"`
}

// --- Errors ---

// ErrInvalidValue is the sentinel wrapped by every InvalidValueError.
var ErrInvalidValue = errors.New("invalid value")

// InvalidValueError reports a value outside the declared domain of a
// dimension. Field is the wire name of the offending dimension.
type InvalidValueError struct {
	Field  Dimension
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidValue.
func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// --- Model ---

// Standard contrast mode names. The preset table in a11y/effects is keyed
// by these names, so a custom Model should reuse them where it can.
const (
	ContrastNone     = "none"
	ContrastInverted = "inverted"
	ContrastHigh     = "high-contrast"
	ContrastDark     = "dark"
	ContrastLow      = "low-contrast"
)

// levelCardinality is the number of levels of the fixed three-step dimensions.
const levelCardinality = 3

// Model defines the legal values of every dimension. Only the contrast
// dimension varies between models: its cardinality is the number of
// contrast modes.
type Model struct {
	contrastModes []string
}

// NewModel creates a model with the given ordered contrast mode names. At
// least two modes are required; fewer falls back to the default set.
func NewModel(contrastModes ...string) Model {
	if len(contrastModes) < 2 {
		return DefaultModel()
	}
	modes := make([]string, len(contrastModes))
	copy(modes, contrastModes)
	return Model{contrastModes: modes}
}

// DefaultModel returns the four-mode model: none, inverted, high-contrast, dark.
func DefaultModel() Model {
	return Model{contrastModes: []string{ContrastNone, ContrastInverted, ContrastHigh, ContrastDark}}
}

// ContrastModes returns the ordered contrast mode names.
func (m Model) ContrastModes() []string {
	out := make([]string, len(m.contrastModes))
	copy(out, m.contrastModes)
	return out
}

// ContrastMode returns the mode name for a level, or "" when out of range.
func (m Model) ContrastMode(level int) string {
	if level < 0 || level >= len(m.contrastModes) {
		return ""
	}
	return m.contrastModes[level]
}

// DefaultBundle returns all levels at 0, left alignment and every toggle off.
func (m Model) DefaultBundle() Bundle {
	return Bundle{TextAlign: AlignLeft}
}

// Cardinality returns the number of levels of an integer dimension. The
// second result is false for textAlign, boolean and unknown dimensions.
func (m Model) Cardinality(d Dimension) (int, bool) {
	switch d {
	case DimContrast:
		return len(m.contrastModes), true
	case DimTextSize, DimTextSpacing, DimLineHeight:
		return levelCardinality, true
	}
	return 0, false
}

// IsToggle reports whether d is one of the boolean dimensions.
func IsToggle(d Dimension) bool {
	switch d {
	case DimScreenReader, DimSmartContrast, DimHighlightLinks, DimCursorHighlight:
		return true
	}
	return false
}

// Clamp forces v into [0, cardinality-1] for an integer dimension. Other
// dimensions return v unchanged.
func (m Model) Clamp(d Dimension, v int) int {
	n, ok := m.Cardinality(d)
	if !ok {
		return v
	}
	return min(max(v, 0), n-1)
}

// CycleLevel returns the level after v, wrapping from the last level back
// to 0. Values outside the range are clamped before stepping.
func (m Model) CycleLevel(d Dimension, v int) int {
	n, ok := m.Cardinality(d)
	if !ok {
		return v
	}
	return (m.Clamp(d, v) + 1) % n
}

// CheckValue validates a single dimension value. Integer dimensions take an
// int, textAlign takes a TextAlign or string, toggles take a bool.
func (m Model) CheckValue(d Dimension, value any) error {
	if n, ok := m.Cardinality(d); ok {
		v, isInt := value.(int)
		if !isInt {
			return &InvalidValueError{Field: d, Value: value, Reason: "expected an integer level"}
		}
		if v < 0 || v >= n {
			return &InvalidValueError{Field: d, Value: value, Reason: fmt.Sprintf("level must be between 0 and %d", n-1)}
		}
		return nil
	}

	if d == DimTextAlign {
		var a TextAlign
		switch v := value.(type) {
		case TextAlign:
			a = v
		case string:
			a = TextAlign(v)
		default:
			return &InvalidValueError{Field: d, Value: value, Reason: "expected left, center or right"}
		}
		if !a.Valid() {
			return &InvalidValueError{Field: d, Value: value, Reason: "expected left, center or right"}
		}
		return nil
	}

	if IsToggle(d) {
		if _, ok := value.(bool); !ok {
			return &InvalidValueError{Field: d, Value: value, Reason: "expected a boolean"}
		}
		return nil
	}

	return &InvalidValueError{Field: d, Value: value, Reason: "unknown dimension"}
}

// Validate checks every field of b in declaration order and returns the
// first violation.
func (m Model) Validate(b Bundle) error {
	for _, d := range dimensionOrder {
		if err := m.CheckValue(d, b.Get(d)); err != nil {
			return err
		}
	}
	return nil
}

// --- Bundle accessors ---

// Get returns the value of one dimension as int, TextAlign or bool.
func (b Bundle) Get(d Dimension) any {
	switch d {
	case DimContrast:
		return b.ContrastLevel
	case DimTextSize:
		return b.TextSizeLevel
	case DimTextSpacing:
		return b.TextSpacingLevel
	case DimLineHeight:
		return b.LineHeightLevel
	case DimTextAlign:
		return b.TextAlign
	case DimScreenReader:
		return b.ScreenReader
	case DimSmartContrast:
		return b.SmartContrast
	case DimHighlightLinks:
		return b.HighlightLinks
	case DimCursorHighlight:
		return b.CursorHighlight
	}
	return nil
}

// with returns a copy of b with one dimension replaced. The value must
// already have passed CheckValue.
func (b Bundle) with(d Dimension, value any) Bundle {
	switch d {
	case DimContrast:
		b.ContrastLevel = value.(int)
	case DimTextSize:
		b.TextSizeLevel = value.(int)
	case DimTextSpacing:
		b.TextSpacingLevel = value.(int)
	case DimLineHeight:
		b.LineHeightLevel = value.(int)
	case DimTextAlign:
		switch v := value.(type) {
		case TextAlign:
			b.TextAlign = v
		case string:
			b.TextAlign = TextAlign(v)
		}
	case DimScreenReader:
		b.ScreenReader = value.(bool)
	case DimSmartContrast:
		b.SmartContrast = value.(bool)
	case DimHighlightLinks:
		b.HighlightLinks = value.(bool)
	case DimCursorHighlight:
		b.CursorHighlight = value.(bool)
	}
	return b
}
