package effects

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// Applicator recomputes every effect from the whole bundle each time the
// store changes. Recomputing from the full bundle (rather than a diff)
// means a missed intermediate update can never leave stale effects behind.
//
// Port failures are logged at debug level and otherwise ignored: a broken
// accessibility aid must never surface as an error to the user.
type Applicator struct {
	model   a11y.Model
	presets Presets
	doc     Document
	speech  Announcer
	focus   FocusSource
	logger  *slog.Logger

	// mu guards the screen-reader listener state. Focus events may arrive
	// on a different goroutine than store notifications.
	mu          sync.Mutex
	detachFocus func()
	unsubscribe func()

	// speechMu orders announcements against turning the reader off. gen
	// identifies the live focus listener; a handler holding an older
	// generation is stale and stays silent. Lock order: mu, then speechMu.
	speechMu sync.Mutex
	gen      uint64
}

// Option configures an Applicator.
type Option func(*Applicator)

// WithPresets overrides the default preset table.
func WithPresets(p Presets) Option {
	return func(a *Applicator) { a.presets = p }
}

// WithAnnouncer sets the speech port. Without it screen-reader mode is silent.
func WithAnnouncer(s Announcer) Option {
	return func(a *Applicator) {
		if s != nil {
			a.speech = s
		}
	}
}

// WithFocusSource sets the focus event port. Without it screen-reader mode
// has nothing to announce.
func WithFocusSource(f FocusSource) Option {
	return func(a *Applicator) { a.focus = f }
}

// WithLogger sets the logger used for swallowed port errors.
func WithLogger(l *slog.Logger) Option {
	return func(a *Applicator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewApplicator creates an applicator drawing on doc. doc may be nil, in
// which case only the screen-reader effect does anything.
func NewApplicator(model a11y.Model, doc Document, opts ...Option) *Applicator {
	a := &Applicator{
		model:   model,
		presets: DefaultPresets(),
		doc:     doc,
		speech:  NopAnnouncer{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach subscribes to store and applies its current bundle immediately.
// Calling Attach again moves the subscription to the new store.
func (a *Applicator) Attach(store *a11y.Store) {
	unsubscribe := store.Subscribe(a.Apply)

	a.mu.Lock()
	prev := a.unsubscribe
	a.unsubscribe = unsubscribe
	a.mu.Unlock()

	if prev != nil {
		prev()
	}
	a.Apply(store.Current())
}

// Close unsubscribes from the store, detaches the focus listener and stops
// any speech in flight. Visual effects are left as they are.
func (a *Applicator) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	a.setScreenReader(false)
}

// Apply recomputes every effect for b.
func (a *Applicator) Apply(b a11y.Bundle) {
	if a.doc != nil {
		a.applyContrast(b)
		a.check("root typography", a.doc.SetRootTypography(a.presets.Typography(b)))
		a.check("link highlight", a.doc.SetLinkHighlight(b.HighlightLinks))
		a.check("cursor highlight", a.doc.SetCursorHighlight(b.CursorHighlight))
	}
	a.setScreenReader(b.ScreenReader)
}

// applyContrast sets the level filter and, with smart contrast on, samples
// the painted background and replaces it with the light or dark preset.
// Turning smart contrast off lands back on the level filter because the
// level filter is always applied first.
func (a *Applicator) applyContrast(b a11y.Bundle) {
	base := a.presets.ContrastFilter(a.model, b.ContrastLevel)
	if err := a.doc.SetGlobalFilter(base); err != nil {
		a.check("contrast filter", err)
		return
	}
	if !b.SmartContrast {
		return
	}

	bg, err := a.doc.SampleBackground()
	if err != nil {
		a.check("background sample", err)
		return
	}
	a.check("smart contrast filter", a.doc.SetGlobalFilter(a.presets.SmartFilter(bg)))
}

// setScreenReader attaches or detaches the focus listener. Only one
// listener is ever attached.
func (a *Applicator) setScreenReader(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !on {
		if a.detachFocus != nil {
			a.detachFocus()
			a.detachFocus = nil
		}
		a.speechMu.Lock()
		a.gen++
		a.speech.Cancel()
		a.speechMu.Unlock()
		return
	}

	if a.detachFocus != nil || a.focus == nil {
		return
	}

	a.speechMu.Lock()
	a.gen++
	gen := a.gen
	a.speechMu.Unlock()

	detach, err := a.focus.OnFocus(func(t FocusTarget) { a.announce(gen, t) })
	if err != nil {
		a.check("focus listener", err)
		return
	}
	a.detachFocus = detach
}

// announce speaks the focused element. The previous utterance is always
// cancelled first so the latest focus wins and nothing queues up. Events
// delivered to a listener that has since been replaced or switched off are
// dropped, even if the port dispatched them before the detach.
func (a *Applicator) announce(gen uint64, t FocusTarget) {
	text := Announcement(t)
	if text == "" {
		return
	}

	a.speechMu.Lock()
	defer a.speechMu.Unlock()
	if gen != a.gen {
		return
	}
	a.speech.Cancel()
	a.speech.Speak(text)
}

// Announcement picks the text to speak for a focused element: the explicit
// label, then the visible text, then the form value.
func Announcement(t FocusTarget) string {
	for _, s := range []string{t.Label, t.Text, t.Value} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (a *Applicator) check(effect string, err error) {
	if err != nil {
		a.logger.Debug("a11y effect skipped",
			slog.String("effect", effect),
			slog.Any("error", err),
		)
	}
}
