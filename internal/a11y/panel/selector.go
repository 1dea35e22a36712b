package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// ErrUnknownProfile is returned by Apply for an id that is not in the
// currently loaded list.
var ErrUnknownProfile = errors.New("unknown profile")

// Selector lists the user's saved profiles and copies one into the active
// bundle on request.
type Selector struct {
	gw     Gateway
	store  *a11y.Store
	notify Notifier

	mu       sync.Mutex
	seq      uint64
	profiles []a11y.Profile
}

// NewSelector creates a selector. A nil notifier discards notices.
func NewSelector(gw Gateway, store *a11y.Store, notify Notifier) *Selector {
	return &Selector{gw: gw, store: store, notify: orNop(notify)}
}

// Refresh reloads the profile list. When calls overlap, only the response
// to the most recent call is kept; older responses are dropped silently.
func (s *Selector) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.mu.Unlock()

	profiles, err := s.gw.List(ctx)

	s.mu.Lock()
	if mine != s.seq {
		s.mu.Unlock()
		return nil
	}
	if err == nil {
		s.profiles = profiles
	}
	s.mu.Unlock()

	if err != nil {
		s.notify.Notify(noticeFor(err))
		return err
	}
	return nil
}

// Profiles returns a copy of the loaded list.
func (s *Selector) Profiles() []a11y.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]a11y.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Apply copies the bundle of a loaded profile into the active store. The
// profile itself is not linked to the store afterwards.
func (s *Selector) Apply(id string) error {
	p, ok := s.find(id)
	if !ok {
		s.notify.Notify(Notice{Level: LevelError, Message: msgNotFound})
		return ErrUnknownProfile
	}
	if err := s.store.ReplaceAll(p.Bundle); err != nil {
		s.notify.Notify(noticeFor(err))
		return err
	}
	s.notify.Notify(Notice{Level: LevelInfo, Message: "Applied " + p.Name + "."})
	return nil
}

// Delete removes a profile remotely and drops it from the loaded list.
func (s *Selector) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, id); err != nil {
		s.notify.Notify(noticeFor(err))
		return err
	}

	s.mu.Lock()
	for i, p := range s.profiles {
		if p.ID == id {
			s.profiles = append(s.profiles[:i:i], s.profiles[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify.Notify(Notice{Level: LevelInfo, Message: "Profile deleted."})
	return nil
}

// Remember inserts or replaces p in the loaded list. The editor calls it
// after a successful save so the list reflects the change without a reload.
func (s *Selector) Remember(p a11y.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].ID == p.ID {
			s.profiles[i] = p
			return
		}
	}
	s.profiles = append(s.profiles, p)
}

func (s *Selector) find(id string) (a11y.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return a11y.Profile{}, false
}
