package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nvandessel/cogsim/internal/module"
)

// ErrDriverClosed is returned by Update after Close.
var ErrDriverClosed = errors.New("driver is closed")

// evalJob is one unit of compute-phase work: a module whose Evaluate runs
// on the pool. The error is written before wg.Done and read only after
// wg.Wait, so no further synchronization is needed.
type evalJob struct {
	m   module.Module
	wg  *sync.WaitGroup
	err error
}

// ConcurrentDriver advances the model with a three-phase,
// barrier-synchronized tick backed by a fixed-size worker pool. The pool is
// created once at construction, reused every tick, and torn down by Close.
//
// Unlike the sequential driver, the read phase runs against the cogxel
// store as it stood at the start of the tick: writes from this tick are not
// visible to any module's read. Modules that depend on each other's outputs
// therefore see them one tick late. This divergence from the sequential
// driver is intentional; the pool size only affects wall-clock time, never
// the result.
type ConcurrentDriver struct {
	*core
	workers int
	jobs    chan *evalJob
	closed  bool
	once    sync.Once
}

// NewConcurrent builds a concurrent driver. The pool size defaults to the
// module count; override it with WithWorkers.
func NewConcurrent(factories []module.Factory, opts ...Option) (*ConcurrentDriver, error) {
	o := buildOptions(opts)
	c, err := newCore(factories, o.logger)
	if err != nil {
		return nil, err
	}
	workers := o.workers
	if workers < 1 {
		workers = len(c.modules)
	}
	d := &ConcurrentDriver{
		core:    c,
		workers: workers,
		jobs:    make(chan *evalJob),
	}
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d, nil
}

// Workers returns the pool size.
func (d *ConcurrentDriver) Workers() int { return d.workers }

// worker drains the job channel for the driver's lifetime. Every dispatched
// unit runs to completion; there is no mid-evaluate cancellation.
func (d *ConcurrentDriver) worker() {
	for job := range d.jobs {
		job.err = job.m.Evaluate()
		job.wg.Done()
	}
}

// Update advances the model by one tick: serial read phase in registration
// order, parallel compute phase with a full barrier, serial write phase in
// registration order.
func (d *ConcurrentDriver) Update(input any) error {
	if d.closed {
		return ErrDriverClosed
	}
	d.ensureInitialized()
	st := d.state
	st.SetInput(input)

	// Read phase: every module sees the store as committed by the previous
	// tick. Nothing is written here, so the phase never contends.
	for i, m := range d.modules {
		if err := m.ReadState(st, st.ModuleState(i)); err != nil {
			return fmt.Errorf("module %q: read state: %w", m.Name(), err)
		}
	}

	// Compute phase: dispatch every Evaluate to the pool and wait for the
	// full barrier. No ordering is guaranteed and modules must not assume
	// one.
	jobs := make([]evalJob, len(d.modules))
	var wg sync.WaitGroup
	wg.Add(len(d.modules))
	for i, m := range d.modules {
		jobs[i] = evalJob{m: m, wg: &wg}
		d.jobs <- &jobs[i]
	}
	wg.Wait()

	for i := range jobs {
		err := jobs[i].err
		if err == nil {
			continue
		}
		// A worker's own interruption signal is logged, not re-raised.
		if errors.Is(err, context.Canceled) {
			d.logger.Warn("evaluate interrupted; result discarded",
				"module", jobs[i].m.Name())
			continue
		}
		return fmt.Errorf("module %q: evaluate: %w", jobs[i].m.Name(), err)
	}

	// Write phase: commit every module's results in registration order.
	// From the next tick's read phase this tick's writes appear atomic.
	for i, m := range d.modules {
		next, err := m.WriteState(st)
		if err != nil {
			return fmt.Errorf("module %q: write state: %w", m.Name(), err)
		}
		st.SetModuleState(i, next)
	}
	return nil
}

// Close tears down the worker pool. The driver must not be updated again;
// in-flight ticks must have completed.
func (d *ConcurrentDriver) Close() {
	d.once.Do(func() {
		d.closed = true
		close(d.jobs)
	})
}
