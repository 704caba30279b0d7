// Package semantic provides the label/identifier registry: a process-owned,
// append-only table that translates stable external names into compact
// integer handles usable as array indices.
package semantic

import "fmt"

// Label is an immutable name. Two labels are the same identity when their
// names are equal.
type Label string

// Identifier pairs a label with the integer index assigned by the
// IdentifierMap that minted it. Identifiers are compared by pointer: an
// identifier is only valid against the map that created it, and a map never
// hands out two identifiers for the same label.
type Identifier struct {
	label Label
	index int
}

// Label returns the label this identifier was minted for.
func (id *Identifier) Label() Label { return id.label }

// Index returns the identifier's integer index. Indices are assigned
// monotonically and never change for the lifetime of the owning map, so
// arrays sized by the map's Len remain valid to index with previously
// minted identifiers even after later growth.
func (id *Identifier) Index() int { return id.index }

func (id *Identifier) String() string {
	return fmt.Sprintf("%s#%d", id.label, id.index)
}

// IdentifierMap owns the label-to-identifier mapping and its reverse. It is
// the only component that creates identifiers; adding a previously unseen
// label is its only mutation.
//
// Concurrency contract: the map carries no internal locking. Growth must
// only occur from single-threaded contexts — in particular, never while a
// driver's compute phase is in flight. Drivers only touch the map during
// their serial phases, so callers preparing input before Update satisfy the
// contract for free.
type IdentifierMap struct {
	byLabel map[Label]*Identifier
	byIndex []*Identifier
}

// NewIdentifierMap creates an empty identifier map.
func NewIdentifierMap() *IdentifierMap {
	return &IdentifierMap{
		byLabel: make(map[Label]*Identifier),
	}
}

// AddLabel returns the identifier for the label, minting one with
// index == Len() if the label has not been seen before. Calling AddLabel
// twice with an equal label returns the same identifier both times.
func (m *IdentifierMap) AddLabel(label Label) *Identifier {
	if id, ok := m.byLabel[label]; ok {
		return id
	}
	id := &Identifier{label: label, index: len(m.byIndex)}
	m.byLabel[label] = id
	m.byIndex = append(m.byIndex, id)
	return id
}

// AddLabels registers every label and returns the identifiers in input order.
func (m *IdentifierMap) AddLabels(labels []Label) []*Identifier {
	ids := make([]*Identifier, len(labels))
	for i, l := range labels {
		ids[i] = m.AddLabel(l)
	}
	return ids
}

// FindIdentifier returns the identifier for the label, or false if the
// label was never registered. Lookups never grow the map.
func (m *IdentifierMap) FindIdentifier(label Label) (*Identifier, bool) {
	id, ok := m.byLabel[label]
	return id, ok
}

// FindLabel returns the label for an identifier minted by this map, or
// false for a nil or foreign identifier.
func (m *IdentifierMap) FindLabel(id *Identifier) (Label, bool) {
	if id == nil || id.index < 0 || id.index >= len(m.byIndex) || m.byIndex[id.index] != id {
		return "", false
	}
	return id.label, true
}

// Len returns the number of identifiers minted so far.
func (m *IdentifierMap) Len() int { return len(m.byIndex) }

// Identifiers returns the minted identifiers in mint order. The returned
// slice is a copy; the identifiers themselves are shared.
func (m *IdentifierMap) Identifiers() []*Identifier {
	out := make([]*Identifier, len(m.byIndex))
	copy(out, m.byIndex)
	return out
}
