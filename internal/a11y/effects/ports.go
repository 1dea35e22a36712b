// Package effects turns the active accessibility bundle into visible and
// audible changes on a rendered document. The document, the speech engine
// and the focus event source are reached only through the ports declared
// here, so the decision logic (which preset for which level, when to speak)
// runs the same against a real browser or a test double.
package effects

// RGB is an 8-bit colour sample.
type RGB struct {
	R, G, B uint8
}

// Luminance returns the perceptual brightness 0.299R + 0.587G + 0.114B on
// a 0-255 scale.
func (c RGB) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Typography is the set of root text properties inherited by every
// descendant of the document.
type Typography struct {
	FontSize      string
	LetterSpacing string
	LineHeight    string
	TextAlign     string
}

// Document is the rendering surface effects are applied to. Every method
// must be idempotent: calling it twice with the same argument leaves the
// same visible state as calling it once.
type Document interface {
	// SetGlobalFilter replaces the whole-page visual filter ("none" clears it).
	SetGlobalFilter(filter string) error

	// SampleBackground reads the effective background colour of the root
	// render surface after the current filter has been painted.
	SampleBackground() (RGB, error)

	// SetRootTypography applies font size, spacing, line height and
	// alignment at the document root.
	SetRootTypography(t Typography) error

	// SetLinkHighlight marks (or unmarks) every hyperlink currently in the
	// document. Implementations re-scan the document on every call.
	SetLinkHighlight(on bool) error

	// SetCursorHighlight swaps the pointer for high-visibility crosshairs
	// (one for the page, another for interactive elements) or restores the
	// default cursors. Implementations re-scan on every call.
	SetCursorHighlight(on bool) error
}

// Announcer is the speech output used in screen-reader mode.
type Announcer interface {
	// Cancel stops any utterance in flight. Safe to call when idle.
	Cancel()

	// Speak starts speaking text.
	Speak(text string)
}

// FocusTarget describes the element that just received focus.
type FocusTarget struct {
	// Label is the explicit accessible label (aria-label or equivalent).
	Label string
	// Text is the visible text content.
	Text string
	// Value is the current value of a form control.
	Value string
}

// FocusSource delivers focus events from the document.
type FocusSource interface {
	// OnFocus starts delivering focus events to fn until detach is called.
	OnFocus(fn func(FocusTarget)) (detach func(), err error)
}

// NopAnnouncer is the Announcer for hosts without speech synthesis.
type NopAnnouncer struct{}

// Cancel does nothing.
func (NopAnnouncer) Cancel() {}

// Speak does nothing.
func (NopAnnouncer) Speak(string) {}
