package module

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/state"
)

// SharedMemoryName is the descriptive name of the shared associative
// memory module.
const SharedMemoryName = "shared associative memory"

// Association links a source label to a target label with a transmission
// weight. One tick after the source activates, weight * activation arrives
// at the target.
type Association struct {
	From   semantic.Label `yaml:"from"`
	To     semantic.Label `yaml:"to"`
	Weight float64        `yaml:"weight"`
}

// link is an association resolved against a model's identifier map.
type link struct {
	from   *semantic.Identifier
	to     *semantic.Identifier
	weight float64
}

// SharedMemory propagates activation along a fixed association network.
// The network is resolved once at construction and never mutated, so every
// model built from the same factory shares the same semantics. The module
// is stateless; per-tick working data lives in the read snapshot.
type SharedMemory struct {
	links []link

	// snapshot maps source identifiers to their activations at read time.
	snapshot map[*semantic.Identifier]float64
	// output holds the propagated activation per target, computed by
	// Evaluate and committed by WriteState.
	output map[*semantic.Identifier]float64
	// targets keeps the deterministic commit order for output.
	targets []*semantic.Identifier
}

// NewSharedMemory returns a factory that builds a shared associative
// memory over the given associations. Labels are registered against the
// model's identifier map when the factory runs.
func NewSharedMemory(associations []Association) Factory {
	return func(im *semantic.IdentifierMap) (Module, error) {
		m := &SharedMemory{}
		for _, a := range associations {
			if a.From == "" || a.To == "" {
				return nil, fmt.Errorf("shared memory: association with empty label: %+v", a)
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

func (m *SharedMemory) Name() string { return SharedMemoryName }

func (m *SharedMemory) Settings() Settings {
	return Settings{"associations": len(m.links)}
}

func (m *SharedMemory) InitializeState(previous state.ModuleState) state.ModuleState {
	return nil
}

// ReadState snapshots the activation of every association source as the
// cogxel store stands right now. Under the concurrent driver that is the
// previous tick's committed store, which is what gives associations their
// one-tick propagation lag.
func (m *SharedMemory) ReadState(ms *state.ModelState, previous state.ModuleState) error {
	cogxels := ms.Cogxels()
	m.snapshot = make(map[*semantic.Identifier]float64, len(m.links))
	for _, l := range m.links {
		m.snapshot[l.from] = cogxels.Activation(l.from)
	}
	m.output = nil
	m.targets = nil
	return nil
}

func (m *SharedMemory) Evaluate() error {
	m.output = make(map[*semantic.Identifier]float64, len(m.links))
	m.targets = m.targets[:0]
	for _, l := range m.links {
		if _, seen := m.output[l.to]; !seen {
			m.targets = append(m.targets, l.to)
		}
		m.output[l.to] += l.weight * m.snapshot[l.from]
	}
	return nil
}

func (m *SharedMemory) WriteState(ms *state.ModelState) (state.ModuleState, error) {
	cogxels := ms.Cogxels()
	for _, to := range m.targets {
		cogxels.GetOrCreate(to, nil).SetActivation(m.output[to])
	}
	return nil, nil
}
