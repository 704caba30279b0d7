// Package model implements the per-tick execution drivers: a sequential
// reference driver and a parallel, barrier-synchronized driver backed by a
// fixed-size worker pool. Both advance the same module contract over the
// same shared state; they differ only in intra-tick read semantics.
package model

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

// ErrStateSizeMismatch is returned when a model state's module-state slot
// count does not match the driver's module count.
var ErrStateSizeMismatch = errors.New("model state slot count does not match module count")

// ErrNoModules is returned when a driver is constructed without modules.
var ErrNoModules = errors.New("driver requires at least one module factory")

// Driver is the public surface shared by the sequential and concurrent
// drivers. One call to Update advances the model by one tick.
type Driver interface {
	// Update stores the input on the model state and drives every module
	// through the read/evaluate/write phases. An error from any module
	// aborts the tick; no partial rollback is performed.
	Update(input any) error

	// CurrentState returns the live model state.
	CurrentState() *state.ModelState

	// SetCognitiveState replaces the model state wholesale. The state's
	// slot count must equal the driver's module count.
	SetCognitiveState(st *state.ModelState) error

	// InitializeCognitiveState validates st like SetCognitiveState, asks
	// each module once for its initial state, and attaches st.
	InitializeCognitiveState(st *state.ModelState) error

	// ResetCognitiveState discards the current state, creates a fresh one,
	// and initializes it.
	ResetCognitiveState()

	// Modules returns the modules in registration order.
	Modules() []module.Module

	// IdentifierMap returns the registry all of this model's identifiers
	// were minted by.
	IdentifierMap() *semantic.IdentifierMap
}

// Option configures a driver at construction.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers sets the concurrent driver's pool size. Values below 1 fall
// back to the default (the module count). The sequential driver ignores it.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the driver's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// core holds what both drivers share: the identifier map, the fixed ordered
// module list, and the current model state.
type core struct {
	identifierMap *semantic.IdentifierMap
	modules       []module.Module
	state         *state.ModelState
	logger        *slog.Logger
}

// newCore mints a fresh identifier map, invokes each factory once against
// it, and initializes a fresh model state.
func newCore(factories []module.Factory, logger *slog.Logger) (*core, error) {
	if len(factories) == 0 {
		return nil, ErrNoModules
	}
	c := &core{
		identifierMap: semantic.NewIdentifierMap(),
		modules:       make([]module.Module, 0, len(factories)),
		logger:        logger,
	}
	for i, f := range factories {
		m, err := f(c.identifierMap)
		if err != nil {
			return nil, fmt.Errorf("module factory %d: %w", i, err)
		}
		c.modules = append(c.modules, m)
	}
	c.ResetCognitiveState()
	return c, nil
}

func (c *core) CurrentState() *state.ModelState { return c.state }

func (c *core) Modules() []module.Module {
	out := make([]module.Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *core) IdentifierMap() *semantic.IdentifierMap { return c.identifierMap }

func (c *core) SetCognitiveState(st *state.ModelState) error {
	if err := c.checkSlots(st); err != nil {
		return err
	}
	c.state = st
	return nil
}

func (c *core) InitializeCognitiveState(st *state.ModelState) error {
	if err := c.checkSlots(st); err != nil {
		return err
	}
	c.initialize(st)
	c.state = st
	return nil
}

func (c *core) ResetCognitiveState() {
	st := state.NewModelState(len(c.modules))
	c.initialize(st)
	c.state = st
}

// initialize asks each module once for its initial state and marks st
// initialized.
func (c *core) initialize(st *state.ModelState) {
	for i, m := range c.modules {
		st.SetModuleState(i, m.InitializeState(st.ModuleState(i)))
	}
	st.SetInitialized(true)
}

func (c *core) checkSlots(st *state.ModelState) error {
	if st == nil || st.NumSlots() != len(c.modules) {
		got := -1
		if st != nil {
			got = st.NumSlots()
		}
		return fmt.Errorf("%w: state has %d slots, driver has %d modules",
			ErrStateSizeMismatch, got, len(c.modules))
	}
	return nil
}

// ensureInitialized lazily initializes a state attached via
// SetCognitiveState before its first tick.
func (c *core) ensureInitialized() {
	if !c.state.Initialized() {
		c.initialize(c.state)
	}
}
