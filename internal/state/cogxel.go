// Package state holds the shared blackboard for one tick: cogxels, the
// insertion-ordered cogxel store, opaque per-module state slots, and the
// model state that aggregates them.
package state

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/semantic"
)

// Cogxel is a named scalar value living in the shared blackboard: an
// identifier paired with a mutable activation. Identity is by identifier.
type Cogxel struct {
	id         *semantic.Identifier
	activation float64
}

// NewCogxel creates a cogxel with zero activation.
func NewCogxel(id *semantic.Identifier) *Cogxel {
	return &Cogxel{id: id}
}

// NewCogxelWithActivation creates a cogxel with the given activation.
func NewCogxelWithActivation(id *semantic.Identifier, activation float64) *Cogxel {
	return &Cogxel{id: id, activation: activation}
}

// Identifier returns the identifier this cogxel is keyed by.
func (c *Cogxel) Identifier() *semantic.Identifier { return c.id }

// Activation returns the current activation value.
func (c *Cogxel) Activation() float64 { return c.activation }

// SetActivation overwrites the activation value.
func (c *Cogxel) SetActivation(a float64) { c.activation = a }

// Clone deep-copies the cogxel. The identifier is shared, never cloned.
func (c *Cogxel) Clone() *Cogxel {
	return &Cogxel{id: c.id, activation: c.activation}
}

func (c *Cogxel) String() string {
	return fmt.Sprintf("%s=%.4f", c.id, c.activation)
}

// CogxelFactory constructs a cogxel for an identifier that is not yet in a
// store. Factories must produce a zero-activation cogxel keyed by id.
type CogxelFactory func(id *semantic.Identifier) *Cogxel

// DefaultCogxelFactory is the factory used when a caller passes nil.
func DefaultCogxelFactory(id *semantic.Identifier) *Cogxel {
	return NewCogxel(id)
}
