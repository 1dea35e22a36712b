package a11y

import (
	"sync"
)

// Listener receives the new bundle after every successful mutation.
type Listener func(Bundle)

// subscription is one registered listener. Entries are kept in registration
// order so notification order is deterministic.
type subscription struct {
	id int
	fn Listener
}

// Store holds the single active settings bundle of a running client.
// Create one per client with NewStore and pass it to the components that
// need it; there is no package-level instance.
//
// Mutations are validated before anything is committed, and listeners are
// notified synchronously before the mutating call returns, in dispatch
// order. Listeners may call Current but must not mutate the store.
type Store struct {
	model Model

	// dispatch serialises mutate+notify so listeners see changes in order.
	dispatch sync.Mutex

	// mu guards current and subs.
	mu      sync.RWMutex
	current Bundle
	subs    []subscription
	nextID  int
}

// NewStore creates a store initialised to the model's default bundle.
func NewStore(model Model) *Store {
	return &Store{
		model:   model,
		current: model.DefaultBundle(),
	}
}

// Model returns the settings model the store validates against.
func (s *Store) Model() Model {
	return s.model
}

// Current returns a snapshot of the active bundle.
func (s *Store) Current() Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetDimension validates value for one dimension and commits it. Returns an
// *InvalidValueError (wrapping ErrInvalidValue) without changing anything
// when the value is outside the dimension's domain.
func (s *Store) SetDimension(d Dimension, value any) error {
	if err := s.model.CheckValue(d, value); err != nil {
		return err
	}
	s.commit(func(b Bundle) (Bundle, error) {
		return b.with(d, value), nil
	})
	return nil
}

// Cycle advances an integer level (wrapping to 0 after the last level) or
// steps textAlign through left, center, right. Toggles are rejected; use
// Toggle for those.
func (s *Store) Cycle(d Dimension) error {
	if _, ok := s.model.Cardinality(d); !ok && d != DimTextAlign {
		return &InvalidValueError{Field: d, Value: nil, Reason: "dimension cannot be cycled"}
	}
	return s.commit(func(b Bundle) (Bundle, error) {
		if d == DimTextAlign {
			return b.with(d, NextAlign(b.TextAlign)), nil
		}
		return b.with(d, s.model.CycleLevel(d, b.Get(d).(int))), nil
	})
}

// Toggle flips a boolean dimension.
func (s *Store) Toggle(d Dimension) error {
	if !IsToggle(d) {
		return &InvalidValueError{Field: d, Value: nil, Reason: "dimension is not a toggle"}
	}
	return s.commit(func(b Bundle) (Bundle, error) {
		return b.with(d, !b.Get(d).(bool)), nil
	})
}

// ReplaceAll validates every field of next and then commits it as a single
// update. On any invalid field the store is left exactly as it was.
func (s *Store) ReplaceAll(next Bundle) error {
	if err := s.model.Validate(next); err != nil {
		return err
	}
	return s.commit(func(Bundle) (Bundle, error) {
		return next, nil
	})
}

// Reset restores the model's default bundle.
func (s *Store) Reset() {
	_ = s.commit(func(Bundle) (Bundle, error) {
		return s.model.DefaultBundle(), nil
	})
}

// Subscribe registers fn to be called after every successful mutation. The
// returned function removes the listener; calling it again is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// commit applies mutate to the current bundle and notifies listeners with
// the result. The dispatch lock is held for the whole call so notifications
// are delivered in the order mutations were made.
func (s *Store) commit(mutate func(Bundle) (Bundle, error)) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	next, err := mutate(s.current)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}
