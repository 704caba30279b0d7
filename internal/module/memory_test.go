package module

import (
	"math"
	"testing"

	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

func TestSharedMemory_PropagatesWeightedActivation(t *testing.T) {
	im := semantic.NewIdentifierMap()
	m := buildModule(t, NewSharedMemory([]Association{
		{From: "a", To: "b", Weight: 0.5},
	}), im)

	a, _ := im.FindIdentifier("a")
	b, _ := im.FindIdentifier("b")

	ms := state.NewModelState(1)
	ms.Cogxels().GetOrCreate(a, nil).SetActivation(1.0)

	runTick(t, m, ms, 0)

	if got := ms.Cogxels().Activation(b); got != 0.5 {
		t.Errorf("activation(b) = %f, want 0.5", got)
	}
}

func TestSharedMemory_FanInSumsContributions(t *testing.T) {
	im := semantic.NewIdentifierMap()
	m := buildModule(t, NewSharedMemory([]Association{
		{From: "a", To: "c", Weight: 0.5},
		{From: "b", To: "c", Weight: 0.25},
	}), im)

	a, _ := im.FindIdentifier("a")
	b, _ := im.FindIdentifier("b")
	c, _ := im.FindIdentifier("c")

	ms := state.NewModelState(1)
	ms.Cogxels().GetOrCreate(a, nil).SetActivation(1.0)
	ms.Cogxels().GetOrCreate(b, nil).SetActivation(1.0)

	runTick(t, m, ms, 0)

	if got := ms.Cogxels().Activation(c); got != 0.75 {
		t.Errorf("activation(c) = %f, want 0.75", got)
	}
}

func TestSharedMemory_SnapshotTakenAtRead(t *testing.T) {
	// A write made between ReadState and WriteState must not leak into the
	// propagated values: Evaluate works only on the read snapshot.
	im := semantic.NewIdentifierMap()
	m := buildModule(t, NewSharedMemory([]Association{
		{From: "a", To: "b", Weight: 1.0},
	}), im)

	a, _ := im.FindIdentifier("a")
	b, _ := im.FindIdentifier("b")

	ms := state.NewModelState(1)
	ms.Cogxels().GetOrCreate(a, nil).SetActivation(0.5)

	if err := m.ReadState(ms, nil); err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	ms.Cogxels().GetOrCreate(a, nil).SetActivation(9.0)
	if err := m.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, err := m.WriteState(ms); err != nil {
		t.Fatalf("WriteState: %v", err)
	}

	if got := ms.Cogxels().Activation(b); got != 0.5 {
		t.Errorf("activation(b) = %f, want the read-time value 0.5", got)
	}
}

func TestSharedMemory_EmptyLabelRejected(t *testing.T) {
	im := semantic.NewIdentifierMap()
	if _, err := NewSharedMemory([]Association{{From: "", To: "b", Weight: 1}})(im); err == nil {
		t.Error("expected factory error for empty source label")
	}
}

func TestMutableMemory_PropagatesAndAdaptsWeights(t *testing.T) {
	im := semantic.NewIdentifierMap()
	cfg := DefaultOjaConfig()
	m := buildModule(t, NewMutableMemory([]Association{
		{From: "a", To: "b", Weight: 0.5},
	}, cfg), im)

	a, _ := im.FindIdentifier("a")
	b, _ := im.FindIdentifier("b")

	ms := state.NewModelState(1)
	ms.SetModuleState(0, m.InitializeState(nil))
	ms.Cogxels().GetOrCreate(a, nil).SetActivation(1.0)

	runTick(t, m, ms, 0)

	if got := ms.Cogxels().Activation(b); got != 0.5 {
		t.Errorf("activation(b) = %f, want 0.5", got)
	}

	st, ok := ms.ModuleState(0).(*MutableMemoryState)
	if !ok {
		t.Fatalf("module state is %T, want *MutableMemoryState", ms.ModuleState(0))
	}
	want := OjaUpdate(0.5, 1.0, 0.5, cfg)
	if got := st.Weights()[0]; math.Abs(got-want) > 1e-12 {
		t.Errorf("adapted weight = %f, want %f", got, want)
	}
	if want <= 0.5 {
		t.Errorf("co-activation should strengthen the weight: %f -> %f", 0.5, want)
	}
}

func TestMutableMemory_StateIsCloneable(t *testing.T) {
	im := semantic.NewIdentifierMap()
	m := buildModule(t, NewMutableMemory([]Association{
		{From: "a", To: "b", Weight: 0.3},
	}, DefaultOjaConfig()), im)

	st := m.InitializeState(nil).(*MutableMemoryState)
	clone := st.CloneModuleState().(*MutableMemoryState)

	if clone == st {
		t.Fatal("CloneModuleState returned the same instance")
	}
	clone.weights[0] = 0.9
	if st.weights[0] == 0.9 {
		t.Error("mutation of cloned weights visible in original state")
	}
}

func TestMutableMemory_RejectsForeignState(t *testing.T) {
	im := semantic.NewIdentifierMap()
	m := buildModule(t, NewMutableMemory([]Association{
		{From: "a", To: "b", Weight: 0.3},
	}, DefaultOjaConfig()), im)

	ms := state.NewModelState(1)
	if err := m.ReadState(ms, "not a memory state"); err == nil {
		t.Error("expected error for a foreign module state, got nil")
	}
}
