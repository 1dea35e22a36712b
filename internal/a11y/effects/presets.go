package effects

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// DefaultLuminanceThreshold splits "light" from "dark" backgrounds for
// smart contrast.
const DefaultLuminanceThreshold = 140

// Presets maps bundle levels to concrete CSS values. Contrast filters are
// keyed by contrast mode name so the table does not depend on the order of
// modes in a particular model.
type Presets struct {
	Contrast map[string]string `yaml:"contrast"`

	SmartContrast SmartContrastPresets `yaml:"smart_contrast"`

	TextSize    [3]string `yaml:"text_size"`
	TextSpacing [3]string `yaml:"text_spacing"`
	LineHeight  [3]string `yaml:"line_height"`
}

// SmartContrastPresets are the two filters chosen from the sampled
// background, and the luminance boundary between them.
type SmartContrastPresets struct {
	Threshold float64 `yaml:"threshold"`
	Light     string  `yaml:"light"`
	Dark      string  `yaml:"dark"`
}

// DefaultPresets returns the built-in table.
func DefaultPresets() Presets {
	return Presets{
		Contrast: map[string]string{
			a11y.ContrastNone:     "none",
			a11y.ContrastInverted: "invert(100%) hue-rotate(180deg)",
			a11y.ContrastHigh:     "contrast(150%) saturate(200%)",
			a11y.ContrastDark:     "contrast(80%) brightness(80%)",
			a11y.ContrastLow:      "contrast(75%) brightness(120%)",
		},
		SmartContrast: SmartContrastPresets{
			Threshold: DefaultLuminanceThreshold,
			Light:     "contrast(130%) brightness(90%)",
			Dark:      "contrast(120%) brightness(130%)",
		},
		TextSize:    [3]string{"16px", "20px", "24px"},
		TextSpacing: [3]string{"normal", "0.12em", "0.2em"},
		LineHeight:  [3]string{"normal", "1.8", "2.4"},
	}
}

// LoadPresets reads a YAML preset file on top of the defaults and checks
// that the result covers every contrast mode of model. An empty path
// returns the defaults.
func LoadPresets(path string, model a11y.Model) (Presets, error) {
	p := DefaultPresets()
	if path == "" {
		return p, p.Check(model)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("reading presets %s: %w", path, err)
	}

	var file Presets
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Presets{}, fmt.Errorf("parsing presets %s: %w", path, err)
	}
	p.merge(file)

	if err := p.Check(model); err != nil {
		return Presets{}, fmt.Errorf("presets %s: %w", path, err)
	}
	return p, nil
}

// Check verifies the table is total over the model's contrast modes.
func (p Presets) Check(model a11y.Model) error {
	for _, mode := range model.ContrastModes() {
		if _, ok := p.Contrast[mode]; !ok {
			return fmt.Errorf("no contrast filter for mode %q", mode)
		}
	}
	if p.SmartContrast.Light == "" || p.SmartContrast.Dark == "" {
		return fmt.Errorf("smart contrast needs both light and dark filters")
	}
	return nil
}

// merge overlays non-empty values from other.
func (p *Presets) merge(other Presets) {
	for mode, filter := range other.Contrast {
		p.Contrast[mode] = filter
	}
	if other.SmartContrast.Threshold > 0 {
		p.SmartContrast.Threshold = other.SmartContrast.Threshold
	}
	if other.SmartContrast.Light != "" {
		p.SmartContrast.Light = other.SmartContrast.Light
	}
	if other.SmartContrast.Dark != "" {
		p.SmartContrast.Dark = other.SmartContrast.Dark
	}
	mergeLevels(&p.TextSize, other.TextSize)
	mergeLevels(&p.TextSpacing, other.TextSpacing)
	mergeLevels(&p.LineHeight, other.LineHeight)
}

func mergeLevels(dst *[3]string, src [3]string) {
	for i, v := range src {
		if v != "" {
			dst[i] = v
		}
	}
}

// ContrastFilter returns the filter for a level of model. Levels whose mode
// has no entry fall back to the "none" filter.
func (p Presets) ContrastFilter(model a11y.Model, level int) string {
	if f, ok := p.Contrast[model.ContrastMode(level)]; ok {
		return f
	}
	if f, ok := p.Contrast[a11y.ContrastNone]; ok {
		return f
	}
	return "none"
}

// SmartFilter picks the light or dark branch for a sampled background.
func (p Presets) SmartFilter(bg RGB) string {
	if bg.Luminance() > p.SmartContrast.Threshold {
		return p.SmartContrast.Light
	}
	return p.SmartContrast.Dark
}

// Typography maps the bundle's typography levels and alignment.
func (p Presets) Typography(b a11y.Bundle) Typography {
	return Typography{
		FontSize:      level(p.TextSize, b.TextSizeLevel),
		LetterSpacing: level(p.TextSpacing, b.TextSpacingLevel),
		LineHeight:    level(p.LineHeight, b.LineHeightLevel),
		TextAlign:     string(b.TextAlign),
	}
}

// level indexes a three-step table, clamping out-of-range levels.
func level(table [3]string, i int) string {
	return table[min(max(i, 0), len(table)-1)]
}
