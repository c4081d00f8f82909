// Package editor implements the load / edit / save lifecycle shared by the
// settings screens and the asset library. An editor holds one draft, allows
// one save at a time and tells registered listeners when a save lands.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/brandkit/storage"
)

var (
	// ErrSaveInProgress is returned when a save or upload is already running.
	ErrSaveInProgress = errors.New("editor: save in progress")
	// ErrNotReady is returned for edits and saves before the first load.
	ErrNotReady = errors.New("editor: not ready")
)

// State of an editor instance.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Saving
	SaveError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Saving:
		return "saving"
	case SaveError:
		return "save-error"
	}
	return "unknown"
}

// Outcome is the result of the most recent save, shown once to the user.
type Outcome struct {
	Err error
	At  time.Time
}

// OK reports whether the save succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// TransitionFunc observes every state change.
type TransitionFunc func(from, to State)

// LoadFunc fetches the current value. It never fails; degraded loads carry
// their cause in Loaded.Err.
type LoadFunc[T any] func(ctx context.Context) storage.Loaded[T]

// SaveFunc persists the whole draft.
type SaveFunc[T any] func(ctx context.Context, v T) error

// Snapshot is a consistent copy of an editor's state for rendering.
type Snapshot[T any] struct {
	State   State
	Draft   T
	Source  storage.Source
	LoadErr error
	Outcome *Outcome
}

// Editor drives one singleton settings value.
type Editor[T any] struct {
	name string
	load LoadFunc[T]
	save SaveFunc[T]
	now  func() time.Time

	mu          sync.Mutex
	state       State
	draft       T
	dirty       bool
	source      storage.Source
	loadErr     error
	outcome     *Outcome
	transitions []TransitionFunc
	listeners   []func(T)
}

// New returns an Idle editor.
func New[T any](name string, load LoadFunc[T], save SaveFunc[T]) *Editor[T] {
	return &Editor[T]{name: name, load: load, save: save, now: time.Now}
}

// Name identifies the editor in logs and templates.
func (e *Editor[T]) Name() string { return e.name }

// OnTransition registers fn for every state change. Hooks run with the
// editor unlocked.
func (e *Editor[T]) OnTransition(fn TransitionFunc) {
	e.mu.Lock()
	e.transitions = append(e.transitions, fn)
	e.mu.Unlock()
}

// OnSaved registers fn to run after every successful save with the saved
// value.
func (e *Editor[T]) OnSaved(fn func(T)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// setState must be called with e.mu held. It returns the hooks to fire once
// the lock is released.
func (e *Editor[T]) setState(to State) (from State, hooks []TransitionFunc) {
	from = e.state
	e.state = to
	return from, e.transitions
}

func fire(hooks []TransitionFunc, steps ...[2]State) {
	for _, s := range steps {
		for _, h := range hooks {
			h(s[0], s[1])
		}
	}
}

// Mount loads the value into the draft. It may be called again from Ready
// to reload; it refuses while a save is outstanding.
func (e *Editor[T]) Mount(ctx context.Context) error {
	e.mu.Lock()
	if e.state == Saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	from, hooks := e.setState(Loading)
	e.mu.Unlock()
	fire(hooks, [2]State{from, Loading})

	l := e.load(ctx)

	e.mu.Lock()
	e.draft = l.Value
	e.dirty = false
	e.source = l.Source
	e.loadErr = l.Err
	_, hooks = e.setState(Ready)
	e.mu.Unlock()
	fire(hooks, [2]State{Loading, Ready})
	return nil
}

// State returns the current state.
func (e *Editor[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns the current draft.
func (e *Editor[T]) Draft() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Dirty reports whether the draft has edits that were not saved.
func (e *Editor[T]) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Snapshot returns the state, draft and last outcome together.
func (e *Editor[T]) Snapshot() Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot[T]{
		State:   e.state,
		Draft:   e.draft,
		Source:  e.source,
		LoadErr: e.loadErr,
		Outcome: e.outcome,
	}
}

// TakeOutcome returns the last save outcome and clears it, so a flash is
// shown once.
func (e *Editor[T]) TakeOutcome() *Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.outcome
	e.outcome = nil
	return o
}

// Edit applies fn to the draft in place.
func (e *Editor[T]) Edit(fn func(*T)) error {
	e.mu.Lock()
	switch e.state {
	case Ready:
	case Saving:
		e.mu.Unlock()
		return ErrSaveInProgress
	default:
		e.mu.Unlock()
		return ErrNotReady
	}
	fn(&e.draft)
	e.dirty = true
	_, hooks := e.setState(Ready)
	e.mu.Unlock()
	fire(hooks, [2]State{Ready, Ready})
	return nil
}

// Replace swaps the whole draft.
func (e *Editor[T]) Replace(v T) error {
	return e.Edit(func(d *T) { *d = v })
}

// Save writes the draft. Only one save runs at a time; the store call is
// made without holding the editor lock so State reports Saving meanwhile.
func (e *Editor[T]) Save(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case Ready:
	case Saving:
		e.mu.Unlock()
		return ErrSaveInProgress
	default:
		e.mu.Unlock()
		return ErrNotReady
	}
	v := e.draft
	_, hooks := e.setState(Saving)
	e.mu.Unlock()
	fire(hooks, [2]State{Ready, Saving})

	err := e.save(ctx, v)

	e.mu.Lock()
	e.outcome = &Outcome{Err: err, At: e.now()}
	var steps [][2]State
	if err != nil {
		e.setState(SaveError)
		steps = append(steps, [2]State{Saving, SaveError}, [2]State{SaveError, Ready})
	} else {
		e.dirty = false
		e.source = storage.SourceStored
		e.loadErr = nil
		steps = append(steps, [2]State{Saving, Ready})
	}
	_, hooks = e.setState(Ready)
	listeners := e.listeners
	e.mu.Unlock()

	fire(hooks, steps...)
	if err == nil {
		for _, fn := range listeners {
			fn(v)
		}
	}
	return err
}
