package state

import (
	"errors"

	"github.com/nvandessel/cogsim/internal/semantic"
)

// ErrNilIdentifier is returned by store mutators given a nil identifier.
var ErrNilIdentifier = errors.New("identifier must not be nil")

// ErrNilCogxel is returned by store mutators given a nil cogxel, or a
// cogxel whose identifier is nil.
var ErrNilCogxel = errors.New("cogxel must not be nil")

// CogxelState is a sparse, insertion-ordered mapping from identifier to
// cogxel: the shared blackboard for one tick. At most one cogxel exists per
// identifier. The store is owned by a model state and is only touched during
// a driver's serial phases, so it carries no locking.
type CogxelState struct {
	byID  map[*semantic.Identifier]*Cogxel
	order []*semantic.Identifier
}

// NewCogxelState creates an empty cogxel store.
func NewCogxelState() *CogxelState {
	return &CogxelState{byID: make(map[*semantic.Identifier]*Cogxel)}
}

// Has reports whether a cogxel exists for the identifier.
func (s *CogxelState) Has(id *semantic.Identifier) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the cogxel for the identifier, if present.
func (s *CogxelState) Get(id *semantic.Identifier) (*Cogxel, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// GetOrCreate returns the existing cogxel for id, or invokes factory to
// construct one, inserts it preserving first-insertion order, and returns
// it. A nil factory falls back to DefaultCogxelFactory. Calling GetOrCreate
// twice with the same identifier returns the identical cogxel and invokes
// the factory only once.
func (s *CogxelState) GetOrCreate(id *semantic.Identifier, factory CogxelFactory) *Cogxel {
	if id == nil {
		return nil
	}
	if c, ok := s.byID[id]; ok {
		return c
	}
	if factory == nil {
		factory = DefaultCogxelFactory
	}
	c := factory(id)
	s.byID[id] = c
	s.order = append(s.order, id)
	return c
}

// Add inserts the cogxel, or overwrites an existing cogxel with the same
// identifier in place (insertion order is kept from the first insertion).
func (s *CogxelState) Add(c *Cogxel) error {
	if c == nil || c.Identifier() == nil {
		return ErrNilCogxel
	}
	id := c.Identifier()
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = c
	return nil
}

// Activation returns the activation for the identifier, or 0.0 when the
// identifier is nil or no cogxel exists for it. Missing data degrades
// gracefully; this never errors.
func (s *CogxelState) Activation(id *semantic.Identifier) float64 {
	if c, ok := s.byID[id]; ok {
		return c.Activation()
	}
	return 0.0
}

// Remove deletes the cogxel for the identifier and reports whether a
// removal occurred. A nil identifier is an invalid argument.
func (s *CogxelState) Remove(id *semantic.Identifier) (bool, error) {
	if id == nil {
		return false, ErrNilIdentifier
	}
	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// RemoveCogxel removes the cogxel keyed by c's identifier. A nil cogxel is
// an invalid argument.
func (s *CogxelState) RemoveCogxel(c *Cogxel) (bool, error) {
	if c == nil || c.Identifier() == nil {
		return false, ErrNilCogxel
	}
	return s.Remove(c.Identifier())
}

// Len returns the number of cogxels in the store.
func (s *CogxelState) Len() int { return len(s.byID) }

// Clear empties the store.
func (s *CogxelState) Clear() {
	s.byID = make(map[*semantic.Identifier]*Cogxel)
	s.order = s.order[:0]
}

// Identifiers returns the identifiers in insertion order.
func (s *CogxelState) Identifiers() []*semantic.Identifier {
	out := make([]*semantic.Identifier, len(s.order))
	copy(out, s.order)
	return out
}

// Cogxels returns the cogxels in insertion order.
func (s *CogxelState) Cogxels() []*Cogxel {
	out := make([]*Cogxel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Clone deep-copies every contained cogxel, preserving identifier sharing
// and insertion order.
func (s *CogxelState) Clone() *CogxelState {
	clone := &CogxelState{
		byID:  make(map[*semantic.Identifier]*Cogxel, len(s.byID)),
		order: make([]*semantic.Identifier, len(s.order)),
	}
	copy(clone.order, s.order)
	for id, c := range s.byID {
		clone.byID[id] = c.Clone()
	}
	return clone
}
