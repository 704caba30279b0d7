package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/cogsim/internal/config"
	"github.com/nvandessel/cogsim/internal/export"
	"github.com/nvandessel/cogsim/internal/trace"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the latest trace run to an Arrow IPC file",
		Long: `Read the most recent run from the trace database and write its
activation samples to an Arrow IPC file for analysis in external tooling.

Example:
  cogsim run --trace scenario.yaml
  cogsim export -o trace.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			tracePath, _ := cmd.Flags().GetString("trace-path")
			if tracePath == "" {
				tracePath = cfg.Trace.Path
			}
			output, _ := cmd.Flags().GetString("output")

			runID, samples, err := trace.ReadLatestRun(tracePath)
			if err != nil {
				return fmt.Errorf("reading trace: %w", err)
			}
			if len(samples) == 0 {
				return fmt.Errorf("run %s has no recorded activations", runID)
			}

			if err := export.WriteSamples(output, samples); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"run_id":  runID,
					"samples": len(samples),
					"output":  output,
				})
			}
			fmt.Printf("Exported %d samples from run %s to %s\n", len(samples), runID, output)
			return nil
		},
	}

	cmd.Flags().String("trace-path", "", "Trace database path (default: .cogsim/trace.db)")
	cmd.Flags().StringP("output", "o", "trace.arrow", "Output Arrow IPC file")

	return cmd
}
