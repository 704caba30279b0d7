package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/state"
)

func newConcurrent(t *testing.T, factories []module.Factory, opts ...Option) *ConcurrentDriver {
	t.Helper()
	d, err := NewConcurrent(factories, opts...)
	if err != nil {
		t.Fatalf("NewConcurrent: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestConcurrent_OneTickLag(t *testing.T) {
	// Reads happen before this tick's writes, so the memory module sees the
	// perceived input one tick late. This is the documented divergence from
	// the sequential driver, not a bug.
	d := newConcurrent(t, perceptionAndMemory())

	if err := d.Update(module.Pattern{"i1": 1.0}); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if got := activation(t, d, "o1"); got != 0.0 {
		t.Errorf("tick 1: activation(o1) = %f, want 0.0 (one-tick lag)", got)
	}

	if err := d.Update(module.Pattern{"i1": 1.0}); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if got := activation(t, d, "o1"); got != 1.0 {
		t.Errorf("tick 2: activation(o1) = %f, want 1.0 after one full tick", got)
	}
}

func TestConcurrent_DivergesFromSequentialIntraTick(t *testing.T) {
	// Same modules, same input: the sequential driver propagates within the
	// tick, the concurrent driver after it. Both must agree from tick 2 on
	// for a constant input.
	seq, err := NewSequential(perceptionAndMemory())
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	con := newConcurrent(t, perceptionAndMemory())

	input := module.Pattern{"i1": 1.0}
	if err := seq.Update(input); err != nil {
		t.Fatalf("sequential tick 1: %v", err)
	}
	if err := con.Update(input); err != nil {
		t.Fatalf("concurrent tick 1: %v", err)
	}

	seqO1 := activation(t, seq, "o1")
	conO1 := activation(t, con, "o1")
	if seqO1 != 1.0 || conO1 != 0.0 {
		t.Errorf("tick 1: sequential o1 = %f (want 1.0), concurrent o1 = %f (want 0.0)", seqO1, conO1)
	}

	if err := seq.Update(input); err != nil {
		t.Fatalf("sequential tick 2: %v", err)
	}
	if err := con.Update(input); err != nil {
		t.Fatalf("concurrent tick 2: %v", err)
	}
	if a, b := activation(t, seq, "o1"), activation(t, con, "o1"); a != b {
		t.Errorf("tick 2: drivers disagree on o1: sequential %f, concurrent %f", a, b)
	}
}

func TestConcurrent_PoolSizeDoesNotChangeResult(t *testing.T) {
	inputs := []module.Pattern{
		{"i1": 1.0, "i2": 0.5},
		{"i1": 0.25},
		{"i2": 0.75, "i3": 1.0},
	}
	factories := func() []module.Factory {
		return []module.Factory{
			module.NewPerception(module.DefaultPerceptionConfig()),
			module.NewSharedMemory([]module.Association{
				{From: "i1", To: "o1", Weight: 1.0},
				{From: "i2", To: "o1", Weight: 0.5},
				{From: "i3", To: "o2", Weight: 0.25},
			}),
			module.NewMutableMemory([]module.Association{
				{From: "o1", To: "o3", Weight: 0.4},
			}, module.DefaultOjaConfig()),
		}
	}

	run := func(workers int) map[string]float64 {
		d := newConcurrent(t, factories(), WithWorkers(workers))
		for i, in := range inputs {
			if err := d.Update(in); err != nil {
				t.Fatalf("workers=%d tick %d: %v", workers, i+1, err)
			}
		}
		out := make(map[string]float64)
		for _, c := range d.CurrentState().Cogxels().Cogxels() {
			out[string(c.Identifier().Label())] = c.Activation()
		}
		return out
	}

	single := run(1)
	for _, workers := range []int{2, 4, 8} {
		got := run(workers)
		if len(got) != len(single) {
			t.Fatalf("workers=%d: %d cogxels, want %d", workers, len(got), len(single))
		}
		for label, want := range single {
			if got[label] != want {
				t.Errorf("workers=%d: activation(%s) = %f, want %f", workers, label, got[label], want)
			}
		}
	}
}

func TestConcurrent_PhasesRunInRegistrationOrder(t *testing.T) {
	var mu sync.Mutex
	var reads, writes []string

	mk := func(name string) module.Factory {
		return factoryFor(&fakeModule{
			name: name,
			onRead: func(*state.ModelState, state.ModuleState) {
				mu.Lock()
				reads = append(reads, name)
				mu.Unlock()
			},
			onWrite: func(*state.ModelState) {
				mu.Lock()
				writes = append(writes, name)
				mu.Unlock()
			},
		})
	}

	d := newConcurrent(t, []module.Factory{mk("m0"), mk("m1"), mk("m2")}, WithWorkers(2))
	if err := d.Update(nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []string{"m0", "m1", "m2"}
	for i := range want {
		if reads[i] != want[i] {
			t.Errorf("read order %v, want %v", reads, want)
			break
		}
	}
	for i := range want {
		if writes[i] != want[i] {
			t.Errorf("write order %v, want %v", writes, want)
			break
		}
	}
}

func TestConcurrent_ComputePhaseRunsInParallel(t *testing.T) {
	// With pool size == module count, every Evaluate can block until the
	// others have started. The tick only finishes if they truly overlap.
	const n = 3
	var wg sync.WaitGroup
	wg.Add(n)

	factories := make([]module.Factory, n)
	for i := 0; i < n; i++ {
		factories[i] = factoryFor(&fakeModule{
			name: "parallel",
			onEval: func() error {
				wg.Done()
				wg.Wait()
				return nil
			},
		})
	}

	d := newConcurrent(t, factories, WithWorkers(n))
	done := make(chan error, 1)
	go func() { done <- d.Update(nil) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tick deadlocked: Evaluate units did not run concurrently")
	}
}

func TestConcurrent_EvaluateErrorAbortsBeforeWrites(t *testing.T) {
	boom := errors.New("boom")
	wrote := false

	d := newConcurrent(t, []module.Factory{
		factoryFor(&fakeModule{name: "bad", evalErr: boom}),
		factoryFor(&fakeModule{
			name:    "good",
			onWrite: func(*state.ModelState) { wrote = true },
		}),
	})

	if err := d.Update(nil); !errors.Is(err, boom) {
		t.Errorf("Update error = %v, want wrapped boom", err)
	}
	if wrote {
		t.Error("write phase ran despite a compute-phase failure")
	}
}

func TestConcurrent_InterruptionSwallowedAndLogged(t *testing.T) {
	// A worker's own interruption signal during the compute phase is logged
	// and not re-raised; the tick completes for the other modules.
	wrote := false
	d := newConcurrent(t, []module.Factory{
		factoryFor(&fakeModule{name: "interrupted", evalErr: context.Canceled}),
		factoryFor(&fakeModule{
			name:    "good",
			onWrite: func(*state.ModelState) { wrote = true },
		}),
	})

	if err := d.Update(nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !wrote {
		t.Error("tick did not complete after a swallowed interruption")
	}
}

func TestConcurrent_UpdateAfterClose(t *testing.T) {
	d, err := NewConcurrent(perceptionAndMemory())
	if err != nil {
		t.Fatalf("NewConcurrent: %v", err)
	}
	d.Close()
	d.Close() // idempotent

	if err := d.Update(nil); !errors.Is(err, ErrDriverClosed) {
		t.Errorf("Update after Close = %v, want ErrDriverClosed", err)
	}
}

func TestConcurrent_CloseLeavesNoWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	d, err := NewConcurrent(perceptionAndMemory(), WithWorkers(8))
	if err != nil {
		t.Fatalf("NewConcurrent: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := d.Update(module.Pattern{"i1": 1.0}); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	d.Close()
}
