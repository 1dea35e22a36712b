package effects

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// --- Test doubles ---

// fakeDocument is an in-memory Document. The style fields are the visible
// state; calls records every port invocation in order.
type fakeDocument struct {
	filter     string
	typography Typography
	links      map[string]bool // href -> highlighted
	cursor     bool
	background RGB
	sampleErr  error
	filterErr  error

	calls []string
}

func newFakeDocument(hrefs ...string) *fakeDocument {
	d := &fakeDocument{links: make(map[string]bool), background: RGB{255, 255, 255}}
	for _, h := range hrefs {
		d.links[h] = false
	}
	return d
}

func (d *fakeDocument) SetGlobalFilter(f string) error {
	d.calls = append(d.calls, "filter:"+f)
	if d.filterErr != nil {
		return d.filterErr
	}
	d.filter = f
	return nil
}

func (d *fakeDocument) SampleBackground() (RGB, error) {
	d.calls = append(d.calls, "sample")
	return d.background, d.sampleErr
}

func (d *fakeDocument) SetRootTypography(t Typography) error {
	d.calls = append(d.calls, "typography")
	d.typography = t
	return nil
}

func (d *fakeDocument) SetLinkHighlight(on bool) error {
	d.calls = append(d.calls, fmt.Sprintf("links:%v", on))
	for h := range d.links {
		d.links[h] = on
	}
	return nil
}

func (d *fakeDocument) SetCursorHighlight(on bool) error {
	d.calls = append(d.calls, fmt.Sprintf("cursor:%v", on))
	d.cursor = on
	return nil
}

// recordingAnnouncer logs cancel/speak calls and tracks which utterance is
// still playing (the last one spoken and not cancelled since).
type recordingAnnouncer struct {
	mu      sync.Mutex
	events  []string
	playing string
}

func (r *recordingAnnouncer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "cancel")
	r.playing = ""
}

func (r *recordingAnnouncer) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "speak:"+text)
	r.playing = text
}

// fakeFocus lets the test fire focus events by hand.
type fakeFocus struct {
	mu       sync.Mutex
	handler  func(FocusTarget)
	attaches int
	detaches int
	err      error
}

func (f *fakeFocus) OnFocus(fn func(FocusTarget)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.handler = fn
	f.attaches++
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.handler = nil
		f.detaches++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFocus) fire(t FocusTarget) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(t)
	}
}

// --- Tests ---

func TestApply_ContrastPresetsAreTotalAndStable(t *testing.T) {
	model := a11y.DefaultModel()
	doc := newFakeDocument()
	app := NewApplicator(model, doc)
	presets := DefaultPresets()

	seen := make(map[string]int)
	for level := range model.ContrastModes() {
		b := model.DefaultBundle()
		b.ContrastLevel = level
		app.Apply(b)
		first := doc.filter
		app.Apply(b)
		assert.Equal(t, first, doc.filter, "level %d must map to a stable filter", level)
		assert.Equal(t, presets.ContrastFilter(model, level), first)
		seen[first] = level
	}
	assert.Len(t, seen, len(model.ContrastModes()), "each level should have its own preset")
	assert.Equal(t, "none", presets.ContrastFilter(model, 0))
}

func TestApply_TypographyAtRoot(t *testing.T) {
	doc := newFakeDocument()
	app := NewApplicator(a11y.DefaultModel(), doc)

	b := a11y.DefaultModel().DefaultBundle()
	b.TextSizeLevel = 2
	b.TextSpacingLevel = 1
	b.LineHeightLevel = 2
	b.TextAlign = a11y.AlignCenter
	app.Apply(b)

	assert.Equal(t, Typography{FontSize: "24px", LetterSpacing: "0.12em", LineHeight: "2.4", TextAlign: "center"}, doc.typography)
}

func TestApply_LinkHighlightIsIdempotent(t *testing.T) {
	doc := newFakeDocument("/cart", "/orders")
	app := NewApplicator(a11y.DefaultModel(), doc)

	b := a11y.DefaultModel().DefaultBundle()
	b.HighlightLinks = true

	app.Apply(b)
	once := map[string]bool{}
	for k, v := range doc.links {
		once[k] = v
	}
	app.Apply(b)
	assert.Equal(t, once, doc.links)
	assert.Equal(t, map[string]bool{"/cart": true, "/orders": true}, doc.links)

	// A link added by navigation is picked up on the next apply.
	doc.links["/checkout"] = false
	b.HighlightLinks = false
	app.Apply(b)
	assert.Equal(t, map[string]bool{"/cart": false, "/orders": false, "/checkout": false}, doc.links)
}

func TestApply_CursorHighlightToggles(t *testing.T) {
	doc := newFakeDocument()
	app := NewApplicator(a11y.DefaultModel(), doc)

	b := a11y.DefaultModel().DefaultBundle()
	b.CursorHighlight = true
	app.Apply(b)
	assert.True(t, doc.cursor)

	b.CursorHighlight = false
	app.Apply(b)
	assert.False(t, doc.cursor)
}

func TestApply_SmartContrastOverridesByBackground(t *testing.T) {
	model := a11y.DefaultModel()
	presets := DefaultPresets()

	plain := model.DefaultBundle()
	smart := plain
	smart.SmartContrast = true

	light := newFakeDocument()
	light.background = RGB{240, 240, 240}
	NewApplicator(model, light).Apply(smart)

	dark := newFakeDocument()
	dark.background = RGB{20, 24, 30}
	NewApplicator(model, dark).Apply(smart)

	plainFilter := presets.ContrastFilter(model, 0)
	assert.Equal(t, presets.SmartContrast.Light, light.filter)
	assert.Equal(t, presets.SmartContrast.Dark, dark.filter)
	assert.NotEqual(t, plainFilter, light.filter)
	assert.NotEqual(t, dark.filter, light.filter)

	// The level filter is painted before the background is sampled.
	assert.Equal(t, []string{"filter:" + plainFilter, "sample", "filter:" + presets.SmartContrast.Light}, light.calls[:3])
}

func TestApply_SmartContrastOffRestoresLevelFilter(t *testing.T) {
	model := a11y.DefaultModel()
	doc := newFakeDocument()
	store := a11y.NewStore(model)
	app := NewApplicator(model, doc)
	app.Attach(store)
	defer app.Close()

	require.NoError(t, store.SetDimension(a11y.DimContrast, 2))
	require.NoError(t, store.Toggle(a11y.DimSmartContrast))
	assert.Equal(t, DefaultPresets().SmartContrast.Light, doc.filter)

	require.NoError(t, store.Toggle(a11y.DimSmartContrast))
	assert.Equal(t, DefaultPresets().ContrastFilter(model, 2), doc.filter)
}

func TestApply_SampleFailureKeepsLevelFilter(t *testing.T) {
	model := a11y.DefaultModel()
	doc := newFakeDocument()
	doc.sampleErr = errors.New("no root surface")
	app := NewApplicator(model, doc)

	b := model.DefaultBundle()
	b.ContrastLevel = 1
	b.SmartContrast = true
	app.Apply(b)
	assert.Equal(t, DefaultPresets().ContrastFilter(model, 1), doc.filter)
}

func TestApply_PortFailuresAreSwallowed(t *testing.T) {
	doc := newFakeDocument()
	doc.filterErr = errors.New("document detached")
	focus := &fakeFocus{err: errors.New("no focus events")}
	app := NewApplicator(a11y.DefaultModel(), doc, WithFocusSource(focus))

	b := a11y.DefaultModel().DefaultBundle()
	b.ScreenReader = true
	b.HighlightLinks = true
	assert.NotPanics(t, func() { app.Apply(b) })
	assert.Contains(t, doc.calls, "links:true")

	// No document and no speech at all still works.
	bare := NewApplicator(a11y.DefaultModel(), nil)
	assert.NotPanics(t, func() { bare.Apply(b) })
}

func TestScreenReader_CancelBeforeEverySpeak(t *testing.T) {
	speech := &recordingAnnouncer{}
	focus := &fakeFocus{}
	store := a11y.NewStore(a11y.DefaultModel())
	app := NewApplicator(a11y.DefaultModel(), newFakeDocument(),
		WithAnnouncer(speech), WithFocusSource(focus))
	app.Attach(store)
	defer app.Close()

	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	speech.events = nil

	focus.fire(FocusTarget{Label: "Add to cart"})
	focus.fire(FocusTarget{Text: "Checkout"})

	assert.Equal(t, []string{"cancel", "speak:Add to cart", "cancel", "speak:Checkout"}, speech.events)
	assert.Equal(t, "Checkout", speech.playing, "only the latest utterance may still be playing")
}

func TestScreenReader_SingleListenerAndDetach(t *testing.T) {
	speech := &recordingAnnouncer{}
	focus := &fakeFocus{}
	store := a11y.NewStore(a11y.DefaultModel())
	app := NewApplicator(a11y.DefaultModel(), newFakeDocument(),
		WithAnnouncer(speech), WithFocusSource(focus))
	app.Attach(store)

	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	require.NoError(t, store.Cycle(a11y.DimTextSize)) // unrelated change keeps one listener
	assert.Equal(t, 1, focus.attaches)

	focus.fire(FocusTarget{Value: "42"})
	assert.Equal(t, "42", speech.playing)

	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	assert.Equal(t, 1, focus.detaches)
	assert.Equal(t, "", speech.playing, "turning the reader off cancels speech")

	focus.fire(FocusTarget{Label: "ignored"})
	assert.NotContains(t, speech.events, "speak:ignored")

	app.Close()
	require.NoError(t, store.Toggle(a11y.DimHighlightLinks))
	assert.Equal(t, 1, focus.attaches)
}

func TestScreenReader_EventDispatchedBeforeDetachStaysSilent(t *testing.T) {
	speech := &recordingAnnouncer{}
	focus := &fakeFocus{}
	store := a11y.NewStore(a11y.DefaultModel())
	app := NewApplicator(a11y.DefaultModel(), newFakeDocument(),
		WithAnnouncer(speech), WithFocusSource(focus))
	app.Attach(store)
	defer app.Close()

	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	focus.mu.Lock()
	inFlight := focus.handler
	focus.mu.Unlock()
	require.NotNil(t, inFlight)

	// The port already handed this event to its goroutine when the reader
	// was switched off.
	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	inFlight(FocusTarget{Label: "late"})

	assert.NotContains(t, speech.events, "speak:late")
	assert.Equal(t, "", speech.playing)

	// Switching back on does not revive the old listener either.
	require.NoError(t, store.Toggle(a11y.DimScreenReader))
	inFlight(FocusTarget{Label: "older"})
	assert.NotContains(t, speech.events, "speak:older")

	focus.fire(FocusTarget{Label: "current"})
	assert.Equal(t, "current", speech.playing)
}

func TestAnnouncement_Priority(t *testing.T) {
	tests := []struct {
		name   string
		target FocusTarget
		want   string
	}{
		{"label wins", FocusTarget{Label: "Search", Text: "Go", Value: "shoes"}, "Search"},
		{"text next", FocusTarget{Label: "  ", Text: "Go", Value: "shoes"}, "Go"},
		{"value last", FocusTarget{Value: "shoes"}, "shoes"},
		{"nothing", FocusTarget{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Announcement(tt.target))
		})
	}
}

func TestScreenReader_EmptyAnnouncementIsSilent(t *testing.T) {
	speech := &recordingAnnouncer{}
	focus := &fakeFocus{}
	app := NewApplicator(a11y.DefaultModel(), nil, WithAnnouncer(speech), WithFocusSource(focus))

	b := a11y.DefaultModel().DefaultBundle()
	b.ScreenReader = true
	app.Apply(b)
	focus.fire(FocusTarget{})
	assert.Empty(t, speech.events)
}
