package stack

import (
	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/observability"
)

// DefaultHistoryLimit is the number of undo steps a Store keeps by default.
const DefaultHistoryLimit = 100

// Cause describes what produced a Change.
type Cause int

const (
	CauseDispatch Cause = iota
	CauseUndo
	CauseRedo
	CauseReset
)

func (c Cause) String() string {
	switch c {
	case CauseDispatch:
		return "dispatch"
	case CauseUndo:
		return "undo"
	case CauseRedo:
		return "redo"
	case CauseReset:
		return "reset"
	}
	return "unknown"
}

// Change is delivered to observers after the store's stack changed.
type Change struct {
	Cause    Cause
	Action   Action // set only when Cause is CauseDispatch
	Previous Stack
	Current  Stack
}

// Observer is called synchronously after each change, in subscription order.
type Observer func(Change)

// Option configures a Store.
type Option func(*Store)

// WithMaxLayers caps the number of layers. Appends on a full stack are
// no-ops. Zero or negative means unbounded.
func WithMaxLayers(n int) Option {
	return func(s *Store) { s.maxLayers = max(n, 0) }
}

// WithHistoryLimit sets how many undo steps are kept. Zero disables history.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.historyLimit = max(n, 0) }
}

// WithIDGenerator sets the generator used for new layer IDs.
func WithIDGenerator(gen layer.IDGenerator) Option {
	return func(s *Store) { s.gen = gen }
}

// WithInitial seeds the store with a stack instead of starting empty.
// The seed is not part of the undo history.
func WithInitial(st Stack) Option {
	return func(s *Store) { s.state = st }
}

type subscription struct {
	id int
	fn Observer
}

// Store owns the current stack for one session.
//
// All methods are synchronous and the Store does no locking; it must be used
// from a single goroutine or guarded by the caller.
type Store struct {
	state        Stack
	gen          layer.IDGenerator
	maxLayers    int
	historyLimit int
	past         []Stack
	future       []Stack
	observers    []subscription
	nextID       int
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current stack.
func (s *Store) State() Stack { return s.state }

// MaxLayers returns the configured cap, zero when unbounded.
func (s *Store) MaxLayers() int { return s.maxLayers }

// Full reports whether another append would be refused by the cap.
func (s *Store) Full() bool {
	return s.maxLayers > 0 && s.state.Len() >= s.maxLayers
}

// Dispatch applies a to the current stack and returns the result. Observers
// are notified only when the stack actually changed; removals on an empty
// stack and appends on a full one are silent no-ops.
func (s *Store) Dispatch(a Action) Stack {
	prev := s.state
	next := prev
	if !(a.IsAppend() && s.Full()) {
		next = Reduce(prev, a, s.gen)
	}
	observability.Stack().OnDispatch(a.String(), prev.Len(), next.Len())

	if next.Len() == prev.Len() {
		return prev
	}
	s.record(prev)
	s.future = nil
	s.state = next
	s.notify(Change{Cause: CauseDispatch, Action: a, Previous: prev, Current: next})
	return next
}

// DispatchAll applies actions in order and returns the final stack.
func (s *Store) DispatchAll(actions ...Action) Stack {
	for _, a := range actions {
		s.Dispatch(a)
	}
	return s.state
}

// CanUndo reports whether Undo would change the stack.
func (s *Store) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether Redo would change the stack.
func (s *Store) CanRedo() bool { return len(s.future) > 0 }

// Undo restores the stack as it was before the most recent change.
// It reports false when there is nothing to undo.
func (s *Store) Undo() bool {
	if !s.CanUndo() {
		observability.Stack().OnHistory(CauseUndo.String(), false)
		return false
	}
	prev := s.state
	s.future = append(s.future, prev)
	s.state = s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	observability.Stack().OnHistory(CauseUndo.String(), true)
	s.notify(Change{Cause: CauseUndo, Previous: prev, Current: s.state})
	return true
}

// Redo re-applies the most recently undone change.
// It reports false when there is nothing to redo.
func (s *Store) Redo() bool {
	if !s.CanRedo() {
		observability.Stack().OnHistory(CauseRedo.String(), false)
		return false
	}
	prev := s.state
	s.record(prev)
	s.state = s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	observability.Stack().OnHistory(CauseRedo.String(), true)
	s.notify(Change{Cause: CauseRedo, Previous: prev, Current: s.state})
	return true
}

// Reset empties the stack. The reset itself can be undone. Resetting an
// empty stack does nothing.
func (s *Store) Reset() {
	if s.state.IsEmpty() {
		return
	}
	prev := s.state
	s.record(prev)
	s.future = nil
	s.state = Empty()
	observability.Stack().OnHistory(CauseReset.String(), true)
	s.notify(Change{Cause: CauseReset, Previous: prev, Current: s.state})
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription; calling it more than once is harmless.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// record pushes st onto the undo history, dropping the oldest entry when the
// limit is reached.
func (s *Store) record(st Stack) {
	if s.historyLimit == 0 {
		return
	}
	if len(s.past) >= s.historyLimit {
		s.past = append(s.past[:0:0], s.past[len(s.past)-s.historyLimit+1:]...)
	}
	s.past = append(s.past, st)
}

func (s *Store) notify(c Change) {
	// Observers may unsubscribe while being notified.
	subs := append([]subscription(nil), s.observers...)
	for _, sub := range subs {
		sub.fn(c)
	}
}
