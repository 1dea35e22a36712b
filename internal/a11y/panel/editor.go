package panel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

var (
	// ErrEditorClosed is returned by Save when no edit session is open.
	ErrEditorClosed = errors.New("editor is not open")

	// ErrNameRequired is returned by Save when the draft has no name.
	ErrNameRequired = errors.New("profile name is required")
)

// Editor edits a profile against the live store. Changes the user makes
// through the store are previewed immediately; Save persists the active
// bundle as the profile and Cancel puts the bundle back to what it was when
// the editor opened.
type Editor struct {
	gw      Gateway
	store   *a11y.Store
	notify  Notifier
	onSaved func(a11y.Profile)

	mu       sync.Mutex
	open     bool
	snapshot a11y.Bundle
	draft    a11y.Profile
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithOnSaved registers a callback run after every successful save, e.g.
// Selector.Remember.
func WithOnSaved(fn func(a11y.Profile)) EditorOption {
	return func(e *Editor) { e.onSaved = fn }
}

// NewEditor creates a closed editor.
func NewEditor(gw Gateway, store *a11y.Store, notify Notifier, opts ...EditorOption) *Editor {
	e := &Editor{gw: gw, store: store, notify: orNop(notify)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenNew starts editing a new profile from the current active bundle.
// Reopening while already open keeps the original snapshot.
func (e *Editor) OpenNew() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin()
	e.draft = a11y.Profile{}
}

// OpenExisting starts editing p and previews its bundle. If the bundle is
// invalid nothing changes and the editor stays closed.
func (e *Editor) OpenExisting(p a11y.Profile) error {
	e.mu.Lock()
	wasOpen, snapshot, draft := e.open, e.snapshot, e.draft
	e.begin()
	e.draft = p
	e.mu.Unlock()

	// Store listeners run synchronously inside ReplaceAll and may call back
	// into the editor, so mu is not held here.
	if err := e.store.ReplaceAll(p.Bundle); err != nil {
		e.mu.Lock()
		e.open, e.snapshot, e.draft = wasOpen, snapshot, draft
		e.mu.Unlock()
		e.notify.Notify(noticeFor(err))
		return err
	}
	return nil
}

// begin records the snapshot on the first open only. Must hold mu.
func (e *Editor) begin() {
	if !e.open {
		e.snapshot = e.store.Current()
		e.open = true
	}
}

// IsOpen reports whether an edit session is in progress.
func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Draft returns the profile being edited with the live bundle filled in.
func (e *Editor) Draft() a11y.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	d.Bundle = e.store.Current()
	return d
}

// SetName sets the draft's name.
func (e *Editor) SetName(name string) {
	e.mu.Lock()
	e.draft.Name = name
	e.mu.Unlock()
}

// SetDescription sets the draft's description.
func (e *Editor) SetDescription(desc string) {
	e.mu.Lock()
	e.draft.Description = desc
	e.mu.Unlock()
}

// Save creates or updates the profile from the active bundle. On success
// the editor closes and the previewed bundle stays active. On failure the
// editor stays open so the user can correct the name and retry.
func (e *Editor) Save(ctx context.Context) (a11y.Profile, error) {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return a11y.Profile{}, ErrEditorClosed
	}
	p := e.draft
	e.mu.Unlock()

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		e.notify.Notify(Notice{Level: LevelError, Message: msgNameRequired, Field: FieldProfileName})
		return a11y.Profile{}, ErrNameRequired
	}
	p.Bundle = e.store.Current()

	var (
		saved a11y.Profile
		err   error
	)
	if p.ID == "" {
		saved, err = e.gw.Create(ctx, p)
	} else {
		saved, err = e.gw.Update(ctx, p)
	}
	if err != nil {
		e.notify.Notify(noticeFor(err))
		return a11y.Profile{}, err
	}

	e.mu.Lock()
	e.open = false
	e.draft = a11y.Profile{}
	e.mu.Unlock()

	if e.onSaved != nil {
		e.onSaved(saved)
	}
	e.notify.Notify(Notice{Level: LevelInfo, Message: "Saved " + saved.Name + "."})
	return saved, nil
}

// Cancel closes the editor and restores the bundle that was active when it
// opened. Calling Cancel on a closed editor does nothing.
func (e *Editor) Cancel() {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return
	}
	snapshot := e.snapshot
	e.open = false
	e.draft = a11y.Profile{}
	e.mu.Unlock()

	// The snapshot came from the store, so it always validates.
	_ = e.store.ReplaceAll(snapshot)
}
