package simulation

import (
	"testing"

	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/semantic"
)

// repeatedInput builds n ticks of the same input pattern.
func repeatedInput(n int, pattern map[semantic.Label]float64) []TickSpec {
	ticks := make([]TickSpec, n)
	for i := range ticks {
		ticks[i] = TickSpec{Input: pattern}
	}
	return ticks
}

func TestMutableMemory_WeightsStrengthenUnderRepetition(t *testing.T) {
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name:       "oja-strengthening",
		Sequential: true,
		Modules: []ModuleSpec{
			{Kind: "perception"},
			{Kind: "mutable-memory",
				LearningRate: 0.2,
				Associations: []module.Association{
					{From: "i1", To: "o1", Weight: 0.3},
				}},
		},
		Ticks: repeatedInput(80, map[semantic.Label]float64{"i1": 1.0}),
	})

	// With constant pre-activation 1.0 the propagated o1 activation tracks
	// the association weight, which Oja's rule pushes toward the ceiling.
	AssertActivationIncreased(t, result, "o1", 0, 40)
	AssertActivationConverges(t, result, "o1", 0.9, 0.95, 70)
	AssertNoActivationExplosion(t, result, 1.0)
}

func TestMutableMemory_NoInputNoAdaptation(t *testing.T) {
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name:       "oja-idle",
		Sequential: true,
		Modules: []ModuleSpec{
			{Kind: "perception"},
			{Kind: "mutable-memory",
				LearningRate: 0.2,
				Associations: []module.Association{
					{From: "i1", To: "o1", Weight: 0.3},
				}},
		},
		Ticks: repeatedInput(10, nil),
	})

	// Without pre-synaptic activity the weight must not move, so o1 stays
	// at its propagated zero.
	AssertActivationConverges(t, result, "o1", 0.0, 0.0, 0)
}
