package module

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

// MutableMemoryName is the descriptive name of the mutable associative
// memory module.
const MutableMemoryName = "mutable associative memory"

// MutableMemoryState is the persisted state of a mutable associative
// memory: one weight per association, indexed in association order. It is
// cloneable, so cloning a model state never shares learned weights between
// model instances.
type MutableMemoryState struct {
	weights []float64
}

// CloneModuleState deep-copies the weights.
func (s *MutableMemoryState) CloneModuleState() state.ModuleState {
	out := &MutableMemoryState{weights: make([]float64, len(s.weights))}
	copy(out.weights, s.weights)
	return out
}

// Weights returns a copy of the current association weights in
// association order.
func (s *MutableMemoryState) Weights() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)
	return out
}

// MutableMemory propagates activation along an association network whose
// weights live in the module's own state slot and adapt after every tick
// via Oja-stabilized Hebbian learning. The learning math belongs to this
// module; the drivers know nothing about it.
type MutableMemory struct {
	links []link // weights here are the tick-0 values
	cfg   OjaConfig

	// Captured by ReadState for one tick.
	snapshot   map[*semantic.Identifier]float64
	tickWeight []float64

	// Produced by Evaluate.
	output     map[*semantic.Identifier]float64
	targets    []*semantic.Identifier
	nextWeight []float64
}

// NewMutableMemory returns a factory that builds a mutable associative
// memory seeded with the given associations.
func NewMutableMemory(associations []Association, cfg OjaConfig) Factory {
	return func(im *semantic.IdentifierMap) (Module, error) {
		if cfg == (OjaConfig{}) {
			cfg = DefaultOjaConfig()
		}
		m := &MutableMemory{cfg: cfg}
		for _, a := range associations {
			if a.From == "" || a.To == "" {
				return nil, fmt.Errorf("mutable memory: association with empty label: %+v", a)
			}
			m.links = append(m.links, link{
				from:   im.AddLabel(a.From),
				to:     im.AddLabel(a.To),
				weight: a.Weight,
			})
		}
		return m, nil
	}
}

func (m *MutableMemory) Name() string { return MutableMemoryName }

func (m *MutableMemory) Settings() Settings {
	return Settings{
		"associations":  len(m.links),
		"learning_rate": m.cfg.LearningRate,
		"min_weight":    m.cfg.MinWeight,
		"max_weight":    m.cfg.MaxWeight,
	}
}

// InitializeState seeds the weight state from the construction-time
// associations. Any previous state is discarded; tick 0 always starts from
// the seeded weights.
func (m *MutableMemory) InitializeState(previous state.ModuleState) state.ModuleState {
	weights := make([]float64, len(m.links))
	for i, l := range m.links {
		weights[i] = l.weight
	}
	return &MutableMemoryState{weights: weights}
}

// ReadState snapshots the source activations and this tick's weights. The
// weights are copied so Evaluate works on data no other phase can touch.
func (m *MutableMemory) ReadState(ms *state.ModelState, previous state.ModuleState) error {
	ws, ok := previous.(*MutableMemoryState)
	if !ok || len(ws.weights) != len(m.links) {
		return fmt.Errorf("mutable memory: unexpected module state %T", previous)
	}
	m.tickWeight = make([]float64, len(ws.weights))
	copy(m.tickWeight, ws.weights)

	cogxels := ms.Cogxels()
	m.snapshot = make(map[*semantic.Identifier]float64, len(m.links))
	for _, l := range m.links {
		m.snapshot[l.from] = cogxels.Activation(l.from)
	}
	m.output = nil
	m.targets = nil
	m.nextWeight = nil
	return nil
}

// Evaluate propagates activation through this tick's weights, then derives
// the next tick's weights with Oja's rule from the pre/post activation of
// each association.
func (m *MutableMemory) Evaluate() error {
	m.output = make(map[*semantic.Identifier]float64, len(m.links))
	m.targets = m.targets[:0]
	for i, l := range m.links {
		if _, seen := m.output[l.to]; !seen {
			m.targets = append(m.targets, l.to)
		}
		m.output[l.to] += m.tickWeight[i] * m.snapshot[l.from]
	}

	m.nextWeight = make([]float64, len(m.links))
	for i, l := range m.links {
		pre := m.snapshot[l.from]
		post := m.output[l.to]
		m.nextWeight[i] = OjaUpdate(m.tickWeight[i], pre, post, m.cfg)
	}
	return nil
}

func (m *MutableMemory) WriteState(ms *state.ModelState) (state.ModuleState, error) {
	cogxels := ms.Cogxels()
	for _, to := range m.targets {
		cogxels.GetOrCreate(to, nil).SetActivation(m.output[to])
	}
	return &MutableMemoryState{weights: m.nextWeight}, nil
}
