// Package simulation provides a multi-tick harness for validating emergent
// dynamics of the execution drivers.
//
// Scenarios exercise the real drivers, modules, and blackboard — no mocks.
// They can be built in Go or loaded from YAML files, declare the model's
// module roster, and feed one input pattern per tick, capturing blackboard
// snapshots for property-based assertions.
//
// Usage:
//
//	func TestPropagation(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:    "propagation",
//	        Modules: []simulation.ModuleSpec{...},
//	        Ticks:   []simulation.TickSpec{...},
//	    })
//	    simulation.AssertActivation(t, result, 1, "o1", 1.0, 1e-9)
//	}
package simulation
