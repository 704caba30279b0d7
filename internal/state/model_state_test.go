package state

import (
	"testing"

	"github.com/nvandessel/cogsim/internal/semantic"
)

// cloneable is a test module state carrying a deep-copy capability.
type cloneable struct {
	values []float64
}

func (c *cloneable) CloneModuleState() ModuleState {
	out := &cloneable{values: make([]float64, len(c.values))}
	copy(out.values, c.values)
	return out
}

// opaque is a test module state without a clone capability.
type opaque struct {
	n int
}

func TestNewModelState(t *testing.T) {
	ms := NewModelState(3)

	if ms.NumSlots() != 3 {
		t.Errorf("NumSlots = %d, want 3", ms.NumSlots())
	}
	if ms.Initialized() {
		t.Error("fresh model state reports initialized")
	}
	if ms.Input() != nil {
		t.Errorf("fresh model state input = %v, want nil", ms.Input())
	}
	if ms.Cogxels().Len() != 0 {
		t.Errorf("fresh model state cogxel store not empty")
	}
}

func TestClear_KeepsSlotLength(t *testing.T) {
	im := semantic.NewIdentifierMap()
	ms := NewModelState(2)
	ms.Cogxels().GetOrCreate(im.AddLabel("a"), nil)
	ms.SetModuleState(0, &opaque{n: 1})
	ms.SetModuleState(1, &opaque{n: 2})
	ms.SetInput("tick-input")
	ms.SetInitialized(true)

	ms.Clear()

	if ms.NumSlots() != 2 {
		t.Errorf("NumSlots after Clear = %d, want 2", ms.NumSlots())
	}
	for i := 0; i < ms.NumSlots(); i++ {
		if ms.ModuleState(i) != nil {
			t.Errorf("slot %d not nulled by Clear", i)
		}
	}
	if ms.Cogxels().Len() != 0 {
		t.Error("cogxel store not emptied by Clear")
	}
	if ms.Input() != nil {
		t.Error("input not cleared by Clear")
	}
	if ms.Initialized() {
		t.Error("initialized flag not reset by Clear")
	}
}

func TestClone_CloneableAndOpaqueSlots(t *testing.T) {
	ms := NewModelState(3)
	deep := &cloneable{values: []float64{1, 2}}
	shared := &opaque{n: 7}
	ms.SetModuleState(0, deep)
	ms.SetModuleState(1, shared)
	// slot 2 stays nil
	ms.SetInitialized(true)

	clone := ms.Clone()

	got, ok := clone.ModuleState(0).(*cloneable)
	if !ok || got == deep {
		t.Error("cloneable slot was not deep-copied")
	} else {
		got.values[0] = 42
		if deep.values[0] == 42 {
			t.Error("mutation of cloned slot visible in original")
		}
	}

	if clone.ModuleState(1) != ModuleState(shared) {
		t.Error("non-cloneable slot should be shared by reference")
	}
	if clone.ModuleState(2) != nil {
		t.Error("nil slot should stay nil")
	}
	if !clone.Initialized() {
		t.Error("initialized flag not carried to clone")
	}
}
