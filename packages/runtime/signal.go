// Package runtime executes hydrated components on the host. It mirrors
// the emitted browser runtime over golang.org/x/net/html documents:
// signals, effects, slot binding, event dispatch and keyed list
// reconciliation all behave the way the shipped JS does, which lets the
// whole server-render/hydrate/interact cycle run inside Go tests.
package runtime

import (
	"errors"
	"fmt"
)

// MaxEffectRuns bounds how many times one effect may re-run inside a
// single synchronous update before the update is declared cyclic.
const MaxEffectRuns = 100

// ErrCycle reports an unbounded signal-write cascade.
var ErrCycle = errors.New("effect exceeded run limit in one update; cyclic signal write")

// graph is the reactive dependency graph of one component instance tree.
// Effects registered while another effect runs track into the active one.
type graph struct {
	active     *Effect
	flushDepth int
	ran        map[*Effect]bool
}

// onCleanup registers fn on the active effect. It runs before the effect
// re-runs and when the effect is disposed.
func (g *graph) onCleanup(fn func()) {
	if g.active != nil {
		g.active.cleanup = fn
	}
}

// Signal is one reactive cell.
type Signal struct {
	g     *graph
	value interface{}
	subs  map[*Effect]bool
}

func newSignal(g *graph, initial interface{}) *Signal {
	return &Signal{g: g, value: initial, subs: map[*Effect]bool{}}
}

// Get reads the value, subscribing the active effect.
func (s *Signal) Get() interface{} {
	if s.g.active != nil {
		s.subs[s.g.active] = true
		s.g.active.deps[s] = true
	}
	return s.value
}

// Peek reads without subscribing.
func (s *Signal) Peek() interface{} { return s.value }

// Set writes the value and synchronously re-runs subscribed effects.
// Equal writes are dropped. A cascade exceeding MaxEffectRuns panics with
// a cycleFailure; Scope.Dispatch converts that into ErrCycle.
func (s *Signal) Set(value interface{}) {
	if looseEqual(s.value, value) {
		return
	}
	s.value = value
	s.notify()
}

// Update applies fn to the current value.
func (s *Signal) Update(fn func(interface{}) interface{}) {
	s.Set(fn(s.value))
}

func (s *Signal) notify() {
	g := s.g
	g.flushDepth++
	defer func() {
		g.flushDepth--
		if g.flushDepth == 0 {
			for e := range g.ran {
				e.runs = 0
				delete(g.ran, e)
			}
		}
	}()
	running := make([]*Effect, 0, len(s.subs))
	for e := range s.subs {
		running = append(running, e)
	}
	for _, e := range running {
		e.run()
	}
}

// Effect is one reactive computation. A cleanup registered during a run
// fires before the next run and when the effect is disposed.
type Effect struct {
	g        *graph
	fn       func()
	cleanup  func()
	deps     map[*Signal]bool
	runs     int
	disposed bool
}

type cycleFailure struct{ effect *Effect }

func newEffect(g *graph, fn func()) *Effect {
	e := &Effect{g: g, fn: fn, deps: map[*Signal]bool{}}
	e.run()
	return e
}

func (e *Effect) run() {
	if e.disposed {
		return
	}
	if e.g.flushDepth > 0 {
		e.runs++
		e.g.ran[e] = true
		if e.runs > MaxEffectRuns {
			panic(cycleFailure{effect: e})
		}
	}
	if c := e.cleanup; c != nil {
		e.cleanup = nil
		c()
	}
	for dep := range e.deps {
		delete(dep.subs, e)
	}
	e.deps = map[*Signal]bool{}
	prev := e.g.active
	e.g.active = e
	defer func() { e.g.active = prev }()
	e.fn()
}

// dispose unsubscribes the effect from every dependency and runs its
// pending cleanup. A disposed effect never runs again.
func (e *Effect) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for dep := range e.deps {
		delete(dep.subs, e)
	}
	e.deps = map[*Signal]bool{}
	if c := e.cleanup; c != nil {
		e.cleanup = nil
		c()
	}
}

// recoverCycle converts a cycleFailure panic into ErrCycle; other panics
// continue unwinding.
func recoverCycle(err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(cycleFailure); ok {
			*err = fmt.Errorf("%w (limit %d)", ErrCycle, MaxEffectRuns)
			return
		}
		panic(r)
	}
}
