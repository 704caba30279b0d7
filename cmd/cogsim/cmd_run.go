package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/cogsim/internal/config"
	"github.com/nvandessel/cogsim/internal/logging"
	"github.com/nvandessel/cogsim/internal/model"
	"github.com/nvandessel/cogsim/internal/semantic"
	"github.com/nvandessel/cogsim/internal/simulation"
	"github.com/nvandessel/cogsim/internal/trace"
)

// runOutcome holds the result of executing one scenario file.
type runOutcome struct {
	Path   string             `json:"path"`
	Name   string             `json:"name"`
	Ticks  int                `json:"ticks"`
	Final  map[string]float64 `json:"final"`
	Result *simulation.Result `json:"-"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml> [scenario.yaml...]",
		Short: "Run one or more scenario files",
		Long: `Execute scenario files tick by tick and report the final blackboard.

A scenario declares the model's module roster, the driver to use, and
one input pattern per tick. Multiple scenario files run concurrently.

Example:
  cogsim run scenario.yaml
  cogsim run --trace a.yaml b.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if v, _ := cmd.Flags().GetString("log-level"); v != "" {
				cfg.Logging.Level = v
			}
			if cmd.Flags().Changed("workers") {
				cfg.Engine.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("sequential") {
				cfg.Engine.Sequential, _ = cmd.Flags().GetBool("sequential")
			}
			if cmd.Flags().Changed("trace") {
				cfg.Trace.Enabled, _ = cmd.Flags().GetBool("trace")
			}
			if v, _ := cmd.Flags().GetString("trace-path"); v != "" {
				cfg.Trace.Path = v
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			tickLog := logging.NewTickLogger(".cogsim", cfg.Logging.Level)
			defer tickLog.Close()

			outcomes := make([]*runOutcome, len(args))
			var mu sync.Mutex

			g := new(errgroup.Group)
			g.SetLimit(runtime.NumCPU())
			for i, path := range args {
				g.Go(func() error {
					scenario, err := simulation.LoadScenario(path)
					if err != nil {
						return err
					}

					applyEngineDefaults(scenario, cfg)

					logger.Info("running scenario", "path", path, "name", scenario.Name, "ticks", len(scenario.Ticks))

					result, err := simulation.Run(scenario, model.WithLogger(logger))
					if err != nil {
						return err
					}

					mu.Lock()
					for _, tr := range result.Ticks {
						tickLog.Log(logging.TickEvent{
							Scenario:    scenario.Name,
							Tick:        tr.Tick,
							Cogxels:     len(tr.Activations),
							Activations: labelActivations(tr.Activations),
						})
					}
					mu.Unlock()

					outcomes[i] = &runOutcome{
						Path:   path,
						Name:   scenario.Name,
						Ticks:  len(result.Ticks),
						Final:  labelActivations(result.Final()),
						Result: result,
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if cfg.Trace.Enabled {
				if err := recordOutcomes(cfg.Trace.Path, outcomes); err != nil {
					return err
				}
				logger.Info("trace recorded", "path", cfg.Trace.Path)
			}

			return printOutcomes(cmd, outcomes)
		},
	}

	cmd.Flags().Int("workers", 0, "Worker pool size for the concurrent driver (0 = auto)")
	cmd.Flags().Bool("sequential", false, "Use the sequential driver")
	cmd.Flags().Bool("trace", false, "Record per-tick activations to the trace database")
	cmd.Flags().String("trace-path", "", "Trace database path (default: .cogsim/trace.db)")

	return cmd
}

// applyEngineDefaults fills driver settings the scenario leaves unset.
// An unset worker count resolves through the config, where 0 means
// runtime.NumCPU().
func applyEngineDefaults(s *simulation.Scenario, cfg *config.Config) {
	if s.Workers == 0 {
		s.Workers = cfg.Engine.EffectiveWorkers()
	}
	if cfg.Engine.Sequential {
		s.Sequential = true
	}
}

// labelActivations converts a blackboard snapshot into string keys for
// output and recording.
func labelActivations(in map[semantic.Label]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for label, a := range in {
		out[string(label)] = a
	}
	return out
}

// recordOutcomes writes every tick of every outcome into one trace run.
func recordOutcomes(path string, outcomes []*runOutcome) error {
	recorder, err := trace.NewRecorder(path)
	if err != nil {
		return err
	}
	defer recorder.Close()

	ctx := context.Background()
	for _, o := range outcomes {
		// Unnamed scenarios record under their file path so two files
		// never share a key.
		key := o.Name
		if key == "" {
			key = o.Path
		}
		for _, tr := range o.Result.Ticks {
			if err := recorder.RecordActivations(ctx, int64(tr.Tick), key, labelActivations(tr.Activations)); err != nil {
				return fmt.Errorf("scenario %q: %w", key, err)
			}
		}
	}
	return nil
}

func printOutcomes(cmd *cobra.Command, outcomes []*runOutcome) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"scenarios": outcomes,
			"count":     len(outcomes),
		})
	}

	for _, o := range outcomes {
		fmt.Printf("Scenario: %s (%s)\n", o.Name, o.Path)
		fmt.Printf("  Ticks: %d\n", o.Ticks)
		if len(o.Final) == 0 {
			fmt.Println("  Blackboard: empty")
			continue
		}
		fmt.Println("  Blackboard:")
		for label, a := range o.Final {
			fmt.Printf("    %s: %.4f\n", label, a)
		}
		fmt.Println()
	}
	return nil
}
