package browser

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/keyxmakerx/a11y-engine/internal/a11y/effects"
)

// Ids of the style elements injected into the page.
const (
	linkStyleID   = "a11y-engine-links"
	cursorStyleID = "a11y-engine-cursor"
)

const linkCSS = `a[href] {
  outline: 3px solid #ffbf47 !important;
  outline-offset: 2px !important;
  text-decoration: underline !important;
}`

const cursorCSS = `html, html * { cursor: crosshair !important; }
a, button, input, select, textarea, label, summary, [role="button"], [role="link"], [tabindex] {
  cursor: cell !important;
}`

// toggleStyleJS inserts or removes a style element by id. Inserting an
// element that already exists replaces its text, so repeated calls leave
// one element behind.
const toggleStyleJS = `(id, css, on) => {
  let el = document.getElementById(id);
  if (!on) { if (el) el.remove(); return; }
  if (!el) {
    el = document.createElement('style');
    el.id = id;
    (document.head || document.documentElement).appendChild(el);
  }
  el.textContent = css;
}`

// Document implements effects.Document on a rod page.
type Document struct {
	page *rod.Page
}

var _ effects.Document = (*Document)(nil)

// SetGlobalFilter sets the CSS filter of the root element.
func (d *Document) SetGlobalFilter(filter string) error {
	_, err := d.page.Eval(`(f) => { document.documentElement.style.filter = f; }`, filter)
	return err
}

// SampleBackground captures a single pixel near the top-left corner of the
// viewport, so the sample reflects the filter as painted. If the capture
// fails it falls back to the computed background colour of the body.
func (d *Document) SampleBackground() (effects.RGB, error) {
	data, err := d.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip:   &proto.PageViewport{X: 1, Y: 1, Width: 1, Height: 1, Scale: 1},
	})
	if err == nil {
		if c, decErr := firstPixel(data); decErr == nil {
			return c, nil
		}
	}

	res, err := d.page.Eval(`() => {
  const transparent = (c) => c === 'transparent' || c === 'rgba(0, 0, 0, 0)';
  const body = document.body ? getComputedStyle(document.body).backgroundColor : 'transparent';
  if (!transparent(body)) return body;
  const root = getComputedStyle(document.documentElement).backgroundColor;
  return transparent(root) ? 'rgb(255, 255, 255)' : root;
}`)
	if err != nil {
		return effects.RGB{}, fmt.Errorf("reading background colour: %w", err)
	}
	return parseRGB(res.Value.Str())
}

// SetRootTypography writes the four text properties on the root element.
func (d *Document) SetRootTypography(t effects.Typography) error {
	_, err := d.page.Eval(`(size, spacing, height, align) => {
  const s = document.documentElement.style;
  s.fontSize = size;
  s.letterSpacing = spacing;
  s.lineHeight = height;
  s.textAlign = align;
}`, t.FontSize, t.LetterSpacing, t.LineHeight, t.TextAlign)
	return err
}

// SetLinkHighlight outlines every link. The rule is a stylesheet so links
// added after this call are covered too.
func (d *Document) SetLinkHighlight(on bool) error {
	_, err := d.page.Eval(toggleStyleJS, linkStyleID, linkCSS, on)
	return err
}

// SetCursorHighlight swaps in crosshair cursors for the page and for
// interactive elements.
func (d *Document) SetCursorHighlight(on bool) error {
	_, err := d.page.Eval(toggleStyleJS, cursorStyleID, cursorCSS, on)
	return err
}

func firstPixel(data []byte) (effects.RGB, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return effects.RGB{}, err
	}
	b := img.Bounds()
	if b.Empty() {
		return effects.RGB{}, image.ErrFormat
	}
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	return effects.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}, nil
}

// parseRGB parses the computed-style forms "rgb(r, g, b)" and
// "rgba(r, g, b, a)". Alpha is ignored.
func parseRGB(s string) (effects.RGB, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return effects.RGB{}, fmt.Errorf("unrecognised colour %q", s)
	}
	fn := s[:open]
	if fn != "rgb" && fn != "rgba" {
		return effects.RGB{}, fmt.Errorf("unrecognised colour %q", s)
	}

	parts := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) < 3 {
		return effects.RGB{}, fmt.Errorf("unrecognised colour %q", s)
	}

	var out [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v < 0 || v > 255 {
			return effects.RGB{}, fmt.Errorf("bad channel %q in %q", parts[i], s)
		}
		out[i] = uint8(v + 0.5)
	}
	return effects.RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// --- Speech ---

// Announcer implements effects.Announcer with the Web Speech API. Pages
// without speechSynthesis ignore the calls.
type Announcer struct {
	page   *rod.Page
	logger *slog.Logger
}

var _ effects.Announcer = (*Announcer)(nil)

// Cancel stops the current utterance.
func (a *Announcer) Cancel() {
	if _, err := a.page.Eval(`() => { if (window.speechSynthesis) speechSynthesis.cancel(); }`); err != nil {
		a.logger.Debug("speech cancel failed", slog.Any("error", err))
	}
}

// Speak queues text for speech.
func (a *Announcer) Speak(text string) {
	_, err := a.page.Eval(`(t) => {
  if (!window.speechSynthesis) return;
  speechSynthesis.speak(new SpeechSynthesisUtterance(t));
}`, text)
	if err != nil {
		a.logger.Debug("speech failed", slog.Any("error", err))
	}
}

// --- Focus ---

// bindingName is the window function the focus listener reports through.
const bindingName = "__a11yEngineFocus"

// FocusSource implements effects.FocusSource with a focusin listener that
// calls back into Go through an exposed binding.
type FocusSource struct {
	page   *rod.Page
	logger *slog.Logger

	mu       sync.Mutex
	attached bool
}

var _ effects.FocusSource = (*FocusSource)(nil)

// OnFocus installs the listener. Only one listener may be attached at a
// time; detach removes both the listener and the binding.
func (f *FocusSource) OnFocus(fn func(effects.FocusTarget)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attached {
		return nil, fmt.Errorf("focus listener already attached")
	}

	stop, err := f.page.Expose(bindingName, func(j gson.JSON) (interface{}, error) {
		fn(effects.FocusTarget{
			Label: j.Get("label").Str(),
			Text:  j.Get("text").Str(),
			Value: j.Get("value").Str(),
		})
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("exposing focus binding: %w", err)
	}

	_, err = f.page.Eval(`(name) => {
  const labelOf = (el) => {
    const aria = el.getAttribute('aria-label');
    if (aria) return aria;
    const by = el.getAttribute('aria-labelledby');
    if (by) {
      const ref = document.getElementById(by);
      if (ref) return ref.textContent;
    }
    if (el.labels && el.labels.length) return el.labels[0].textContent;
    return el.getAttribute('alt') || el.getAttribute('title') || '';
  };
  const handler = (ev) => {
    const el = ev.target;
    if (!el || !el.getAttribute) return;
    window[name]({
      label: labelOf(el) || '',
      text: (el.innerText || '').slice(0, 500),
      value: typeof el.value === 'string' ? el.value : '',
    });
  };
  window.__a11yEngineFocusHandler = handler;
  document.addEventListener('focusin', handler, true);
}`, bindingName)
	if err != nil {
		_ = stop()
		return nil, fmt.Errorf("installing focus listener: %w", err)
	}
	f.attached = true

	var once sync.Once
	return func() {
		once.Do(func() {
			_, evalErr := f.page.Eval(`() => {
  const h = window.__a11yEngineFocusHandler;
  if (h) document.removeEventListener('focusin', h, true);
  delete window.__a11yEngineFocusHandler;
}`)
			if evalErr != nil {
				f.logger.Debug("removing focus listener failed", slog.Any("error", evalErr))
			}
			if stopErr := stop(); stopErr != nil {
				f.logger.Debug("removing focus binding failed", slog.Any("error", stopErr))
			}
			f.mu.Lock()
			f.attached = false
			f.mu.Unlock()
		})
	}, nil
}
