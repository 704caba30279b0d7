package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/cogsim/internal/config"
	"github.com/nvandessel/cogsim/internal/logging"
	"github.com/nvandessel/cogsim/internal/mcp"
	"github.com/nvandessel/cogsim/internal/simulation"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp <scenario.yaml>",
		Short: "Run the MCP server over stdio",
		Long: `Start a Model Context Protocol server exposing the engine to MCP
clients over stdio. The scenario file defines the module graph; clients
drive ticks and inspect state through the cogsim_* tools.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			scenario, err := simulation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			// Flags apply where the scenario itself is silent.
			if cmd.Flags().Changed("workers") {
				cfg.Engine.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("sequential") {
				cfg.Engine.Sequential, _ = cmd.Flags().GetBool("sequential")
			}
			applyEngineDefaults(scenario, cfg)

			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = cfg.Logging.Level
			}

			// Stdout carries the MCP transport; all logging goes to stderr.
			logger := logging.NewLogger(level, os.Stderr)

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "cogsim",
				Version:  version,
				Scenario: scenario,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			return server.Run(context.Background())
		},
	}

	cmd.Flags().Int("workers", 0, "Compute workers for the concurrent driver (0 = all CPUs)")
	cmd.Flags().Bool("sequential", false, "Use the sequential driver instead of the concurrent one")

	return cmd
}
