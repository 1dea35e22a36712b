package a11y

import (
	"fmt"
	"strings"
)

// Describe summarises the non-default parts of b in one line, e.g.
// "contrast: dark, text size 2, links highlighted".
func (m Model) Describe(b Bundle) string {
	var parts []string

	if b.ContrastLevel != 0 {
		parts = append(parts, "contrast: "+m.ContrastMode(b.ContrastLevel))
	}
	if b.TextSizeLevel != 0 {
		parts = append(parts, fmt.Sprintf("text size %d", b.TextSizeLevel))
	}
	if b.TextSpacingLevel != 0 {
		parts = append(parts, fmt.Sprintf("text spacing %d", b.TextSpacingLevel))
	}
	if b.LineHeightLevel != 0 {
		parts = append(parts, fmt.Sprintf("line height %d", b.LineHeightLevel))
	}
	if b.TextAlign != "" && b.TextAlign != AlignLeft {
		parts = append(parts, "aligned "+string(b.TextAlign))
	}
	if b.ScreenReader {
		parts = append(parts, "screen reader")
	}
	if b.SmartContrast {
		parts = append(parts, "smart contrast")
	}
	if b.HighlightLinks {
		parts = append(parts, "links highlighted")
	}
	if b.CursorHighlight {
		parts = append(parts, "large cursor")
	}

	if len(parts) == 0 {
		return "default settings"
	}
	return strings.Join(parts, ", ")
}
