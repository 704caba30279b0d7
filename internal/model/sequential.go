package model

import (
	"fmt"

	"github.com/nvandessel/cogsim/internal/module"
)

// SequentialDriver advances the model with no concurrency at all. The
// three phases are interleaved per module: module i's write is visible to
// module i+1's read within the same tick, so registration-order chains of
// intra-tick data dependencies work. It is the reference implementation
// for correctness.
type SequentialDriver struct {
	*core
}

// NewSequential builds a sequential driver from the ordered module
// factories. Each factory runs once against this model's identifier map.
func NewSequential(factories []module.Factory, opts ...Option) (*SequentialDriver, error) {
	o := buildOptions(opts)
	c, err := newCore(factories, o.logger)
	if err != nil {
		return nil, err
	}
	return &SequentialDriver{core: c}, nil
}

// Update advances the model by one tick, running read, evaluate, and write
// back to back for each module in registration order.
func (d *SequentialDriver) Update(input any) error {
	d.ensureInitialized()
	st := d.state
	st.SetInput(input)

	for i, m := range d.modules {
		if err := m.ReadState(st, st.ModuleState(i)); err != nil {
			return fmt.Errorf("module %q: read state: %w", m.Name(), err)
		}
		if err := m.Evaluate(); err != nil {
			return fmt.Errorf("module %q: evaluate: %w", m.Name(), err)
		}
		next, err := m.WriteState(st)
		if err != nil {
			return fmt.Errorf("module %q: write state: %w", m.Name(), err)
		}
		st.SetModuleState(i, next)
	}
	return nil
}
