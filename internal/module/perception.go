package module

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

// PerceptionName is the descriptive name of the perception module.
const PerceptionName = "perception"

// PerceptionConfig configures the perception module.
type PerceptionConfig struct {
	// Gain scales every input value before it is committed. Default: 1.0.
	Gain float64
}

// DefaultPerceptionConfig returns the default perception configuration.
func DefaultPerceptionConfig() PerceptionConfig {
	return PerceptionConfig{Gain: 1.0}
}

// Perception converts the model's external input pattern into cogxels. It
// is the entry point of every tick: whatever the caller feeds to Update
// becomes blackboard activations during the write phase.
//
// Perception is stateless; its InitializeState returns nil.
type Perception struct {
	im  *semantic.IdentifierMap
	cfg PerceptionConfig

	// snapshot holds identifier/value pairs captured during ReadState.
	// Label resolution happens here, in the serial read phase, so the
	// identifier map never grows during the compute phase.
	snapshot []percept
	// output is produced by Evaluate and committed by WriteState.
	output []percept
}

type percept struct {
	id    *semantic.Identifier
	value float64
}

// NewPerception returns a factory for perception modules with cfg.
func NewPerception(cfg PerceptionConfig) Factory {
	return func(im *semantic.IdentifierMap) (Module, error) {
		if cfg.Gain == 0 {
			cfg.Gain = 1.0
		}
		return &Perception{im: im, cfg: cfg}, nil
	}
}

func (p *Perception) Name() string { return PerceptionName }

func (p *Perception) Settings() Settings {
	return Settings{"gain": p.cfg.Gain}
}

func (p *Perception) InitializeState(previous state.ModuleState) state.ModuleState {
	return nil
}

// ReadState captures the current input pattern and resolves its labels to
// identifiers, growing the identifier map for labels never seen before.
func (p *Perception) ReadState(ms *state.ModelState, previous state.ModuleState) error {
	p.snapshot = p.snapshot[:0]
	p.output = nil

	input := ms.Input()
	if input == nil {
		return nil
	}
	pattern, ok := input.(Pattern)
	if !ok {
		return fmt.Errorf("perception: unsupported input type %T", input)
	}
	for _, id := range p.im.AddLabels(sortedLabels(pattern)) {
		p.snapshot = append(p.snapshot, percept{id: id, value: pattern[id.Label()]})
	}
	return nil
}

func (p *Perception) Evaluate() error {
	p.output = make([]percept, len(p.snapshot))
	for i, s := range p.snapshot {
		p.output[i] = percept{id: s.id, value: s.value * p.cfg.Gain}
	}
	return nil
}

func (p *Perception) WriteState(ms *state.ModelState) (state.ModuleState, error) {
	cogxels := ms.Cogxels()
	for _, o := range p.output {
		cogxels.GetOrCreate(o.id, nil).SetActivation(o.value)
	}
	return nil, nil
}
