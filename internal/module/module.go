// Package module defines the polymorphic unit of computation that plugs
// into the model drivers, plus the concrete modules shipped with the
// engine. Concrete variants differ only in what numeric computation they
// perform; the drivers are agnostic to which variant they hold.
package module

import (
	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

// Settings is the descriptive configuration of a module, exposed for
// observers. Reading it has no side effects.
type Settings map[string]any

// Module is the contract every pluggable unit of computation satisfies.
// One tick drives each module through three phases:
//
//	ReadState  — a read-only pass over the shared cogxel store and the
//	             module's own previous state, building whatever working
//	             snapshot the module needs. Must not mutate shared state.
//	Evaluate   — computes using only the snapshot captured by ReadState.
//	             Must not touch the shared cogxel store or another
//	             module's state, and must be safe to run concurrently
//	             with every other module's Evaluate.
//	WriteState — commits the result of Evaluate into the shared cogxel
//	             store and returns the module's new persisted state.
//
// An error from any phase aborts the current tick for the whole driver; no
// partial-tick recovery is defined at this layer.
type Module interface {
	// Name returns the module's descriptive name.
	Name() string

	// Settings returns the module's configuration. No side effects.
	Settings() Settings

	// InitializeState produces the module's state for tick 0. It is called
	// once when the owning model state is initialized. Stateless modules
	// return nil.
	InitializeState(previous state.ModuleState) state.ModuleState

	// ReadState captures the module's working snapshot for this tick.
	ReadState(ms *state.ModelState, previous state.ModuleState) error

	// Evaluate performs the module's computation over the snapshot.
	Evaluate() error

	// WriteState commits the computed results and returns the module's new
	// state for the next tick.
	WriteState(ms *state.ModelState) (state.ModuleState, error)
}

// Factory produces one module bound to a model instance's identifier map.
// A driver invokes each factory exactly once per model instance.
type Factory func(im *semantic.IdentifierMap) (Module, error)

// Pattern is the external input for one tick: a label-to-value mapping fed
// to the model's perception module. The engine itself treats model input as
// opaque; Pattern is merely the format the shipped modules agree on.
type Pattern map[semantic.Label]float64

// Clone copies the pattern.
func (p Pattern) Clone() Pattern {
	out := make(Pattern, len(p))
	for l, v := range p {
		out[l] = v
	}
	return out
}
