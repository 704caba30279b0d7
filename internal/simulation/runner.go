package simulation

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/model"
	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/semantic"
)

// TickResult snapshots the blackboard after one tick.
type TickResult struct {
	Tick        int
	Activations map[semantic.Label]float64
}

// Result captures every tick of a scenario run.
type Result struct {
	Scenario *Scenario
	Ticks    []TickResult
}

// Activation returns the activation of label after the given tick.
// Missing labels read as 0.0, matching the blackboard's semantics.
func (r Result) Activation(tick int, label semantic.Label) float64 {
	if tick < 0 || tick >= len(r.Ticks) {
		return 0.0
	}
	return r.Ticks[tick].Activations[label]
}

// Final returns the blackboard snapshot after the last tick.
func (r Result) Final() map[semantic.Label]float64 {
	if len(r.Ticks) == 0 {
		return nil
	}
	return r.Ticks[len(r.Ticks)-1].Activations
}

// Run executes the scenario tick by tick and snapshots the blackboard
// after each tick. It builds the driver the scenario asks for and closes
// it when done.
func Run(s *Scenario, opts ...model.Option) (*Result, error) {
	factories, err := s.Factories()
	if err != nil {
		return nil, err
	}

	if s.Workers > 0 {
		opts = append(opts, model.WithWorkers(s.Workers))
	}

	var driver model.Driver
	if s.Sequential {
		driver, err = model.NewSequential(factories, opts...)
	} else {
		var cd *model.ConcurrentDriver
		cd, err = model.NewConcurrent(factories, opts...)
		if err == nil {
			defer cd.Close()
			driver = cd
		}
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %q: building driver: %w", s.Name, err)
	}

	result := &Result{Scenario: s, Ticks: make([]TickResult, 0, len(s.Ticks))}
	for i, tick := range s.Ticks {
		if err := driver.Update(module.Pattern(tick.Input)); err != nil {
			return nil, fmt.Errorf("scenario %q: tick %d: %w", s.Name, i, err)
		}
		result.Ticks = append(result.Ticks, snapshot(i, driver))
	}
	return result, nil
}

// snapshot captures all blackboard activations after a tick.
func snapshot(tick int, d model.Driver) TickResult {
	tr := TickResult{Tick: tick, Activations: make(map[semantic.Label]float64)}
	for _, c := range d.CurrentState().Cogxels().Cogxels() {
		tr.Activations[c.Identifier().Label()] = c.Activation()
	}
	return tr
}

// FormatTickDebug returns a debug string for a tick result.
func FormatTickDebug(tr TickResult) string {
	s := fmt.Sprintf("Tick %d: %d cogxels\n", tr.Tick, len(tr.Activations))
	for label, a := range tr.Activations {
		s += fmt.Sprintf("  %s: activation=%.4f\n", label, a)
	}
	return s
}
