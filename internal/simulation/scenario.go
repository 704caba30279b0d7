package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/semantic"
)

// Scenario defines a complete simulation experiment: the model's module
// roster and the input pattern fed to each tick.
type Scenario struct {
	Name string `yaml:"name"`

	// Workers is the concurrent driver's pool size. 0 uses the default.
	Workers int `yaml:"workers,omitempty"`

	// Sequential selects the sequential driver. Sequential execution
	// resolves same-tick dependency chains; the concurrent driver
	// propagates with a one-tick lag.
	Sequential bool `yaml:"sequential,omitempty"`

	Modules []ModuleSpec `yaml:"modules"`
	Ticks   []TickSpec   `yaml:"ticks"`
}

// ModuleSpec declares one module of the model.
type ModuleSpec struct {
	// Kind selects the module type: "perception", "shared-memory", or
	// "mutable-memory".
	Kind string `yaml:"kind"`

	// Gain applies to perception modules. 0 means 1.0.
	Gain float64 `yaml:"gain,omitempty"`

	// Associations seed the memory modules' networks.
	Associations []module.Association `yaml:"associations,omitempty"`

	// LearningRate applies to mutable-memory modules. 0 uses the default.
	LearningRate float64 `yaml:"learning_rate,omitempty"`
}

// TickSpec is the external input for one tick.
type TickSpec struct {
	Input map[semantic.Label]float64 `yaml:"input"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the scenario is executable.
func (s *Scenario) Validate() error {
	if len(s.Modules) == 0 {
		return fmt.Errorf("scenario %q: at least one module is required", s.Name)
	}
	for i, ms := range s.Modules {
		switch ms.Kind {
		case "perception", "shared-memory", "mutable-memory":
		default:
			return fmt.Errorf("scenario %q: module %d: unknown kind %q", s.Name, i, ms.Kind)
		}
	}
	return nil
}

// Factories builds the module factories declared by the scenario, in
// declaration order.
func (s *Scenario) Factories() ([]module.Factory, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	factories := make([]module.Factory, 0, len(s.Modules))
	for _, ms := range s.Modules {
		switch ms.Kind {
		case "perception":
			cfg := module.DefaultPerceptionConfig()
			if ms.Gain != 0 {
				cfg.Gain = ms.Gain
			}
			factories = append(factories, module.NewPerception(cfg))
		case "shared-memory":
			factories = append(factories, module.NewSharedMemory(ms.Associations))
		case "mutable-memory":
			cfg := module.DefaultOjaConfig()
			if ms.LearningRate != 0 {
				cfg.LearningRate = ms.LearningRate
			}
			factories = append(factories, module.NewMutableMemory(ms.Associations, cfg))
		}
	}
	return factories, nil
}
