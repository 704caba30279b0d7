package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/cogsim/internal/semantic"
)

// Runner wraps Run for tests, failing the test on any error.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner bound to t.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario, failing the test if it errors.
func (r *Runner) Run(s Scenario) Result {
	r.t.Helper()
	result, err := Run(&s)
	if err != nil {
		r.t.Fatalf("Run(%q): %v", s.Name, err)
	}
	return *result
}

// AssertActivation asserts that label has the exact activation after the
// given tick, within epsilon.
func AssertActivation(t *testing.T, result Result, tick int, label semantic.Label, want, epsilon float64) {
	t.Helper()
	got := result.Activation(tick, label)
	if math.Abs(got-want) > epsilon {
		t.Errorf("AssertActivation: tick %d: %s = %.6f, want %.6f (±%.6f)", tick, label, got, want, epsilon)
	}
}

// AssertActivationConverges asserts that label settles within [min, max]
// for every tick from afterTick onward.
func AssertActivationConverges(t *testing.T, result Result, label semantic.Label, min, max float64, afterTick int) {
	t.Helper()
	for i := afterTick; i < len(result.Ticks); i++ {
		a := result.Activation(i, label)
		if a < min || a > max {
			t.Errorf("AssertActivationConverges: tick %d: %s activation %.6f not in [%.4f, %.4f]", i, label, a, min, max)
		}
	}
}

// AssertActivationIncreased asserts that label's activation is higher in a
// later tick than in an earlier one.
func AssertActivationIncreased(t *testing.T, result Result, label semantic.Label, fromTick, toTick int) {
	t.Helper()
	from := result.Activation(fromTick, label)
	to := result.Activation(toTick, label)
	if to <= from {
		t.Errorf("AssertActivationIncreased: %s did not increase: tick %d=%.6f, tick %d=%.6f", label, fromTick, from, toTick, to)
	}
}

// AssertNoActivationExplosion asserts that no activation exceeds max in
// any tick.
func AssertNoActivationExplosion(t *testing.T, result Result, max float64) {
	t.Helper()
	for _, tr := range result.Ticks {
		for label, a := range tr.Activations {
			if a > max {
				t.Errorf("AssertNoActivationExplosion: tick %d: %s activation %.6f > max %.4f", tr.Tick, label, a, max)
			}
		}
	}
}

// AssertResultsEqual asserts that two runs produced identical blackboard
// snapshots at every tick, within epsilon.
func AssertResultsEqual(t *testing.T, a, b Result, epsilon float64) {
	t.Helper()
	if len(a.Ticks) != len(b.Ticks) {
		t.Fatalf("AssertResultsEqual: tick counts differ: %d vs %d", len(a.Ticks), len(b.Ticks))
	}
	for i := range a.Ticks {
		ta, tb := a.Ticks[i], b.Ticks[i]
		if len(ta.Activations) != len(tb.Activations) {
			t.Errorf("AssertResultsEqual: tick %d: cogxel counts differ: %d vs %d", i, len(ta.Activations), len(tb.Activations))
			continue
		}
		for label, va := range ta.Activations {
			vb, ok := tb.Activations[label]
			if !ok {
				t.Errorf("AssertResultsEqual: tick %d: %s missing from second run", i, label)
				continue
			}
			if math.Abs(va-vb) > epsilon {
				t.Errorf("AssertResultsEqual: tick %d: %s differs: %.6f vs %.6f", i, label, va, vb)
			}
		}
	}
}
