package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/cogsim/internal/module"
	"github.com/nvandessel/cogsim/internal/semantic"
)

// registerTools registers all cogsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogsim_step",
		Description: "Advance the model by one or more ticks with an input pattern and return the resulting blackboard",
	}, s.handleStep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogsim_state",
		Description: "Get the current blackboard activations without advancing the model",
	}, s.handleState)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogsim_reset",
		Description: "Discard the model's cognitive state and start from freshly initialized modules",
	}, s.handleReset)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogsim_modules",
		Description: "List the model's modules in registration order with their settings",
	}, s.handleModules)
}

// handleStep advances the model. The same input pattern is fed to every
// requested tick.
func (s *Server) handleStep(ctx context.Context, req *sdk.CallToolRequest, args StepInput) (*sdk.CallToolResult, StepOutput, error) {
	ticks := args.Ticks
	if ticks <= 0 {
		ticks = 1
	}

	var pattern module.Pattern
	if len(args.Input) > 0 {
		pattern = make(module.Pattern, len(args.Input))
		for label, value := range args.Input {
			pattern[semantic.Label(label)] = value
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < ticks; i++ {
		if err := s.driver.Update(pattern); err != nil {
			return nil, StepOutput{}, fmt.Errorf("tick %d: %w", s.tick, err)
		}
		s.tick++
	}

	s.logger.Debug("model stepped", "ticks", ticks, "tick", s.tick)

	return nil, StepOutput{
		Tick:        s.tick,
		Activations: s.activations(),
	}, nil
}

// handleState returns the blackboard as it stands.
func (s *Server) handleState(ctx context.Context, req *sdk.CallToolRequest, args StateInput) (*sdk.CallToolResult, StateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activations := s.activations()
	return nil, StateOutput{
		Tick:        s.tick,
		Count:       len(activations),
		Activations: activations,
	}, nil
}

// handleReset discards the cognitive state.
func (s *Server) handleReset(ctx context.Context, req *sdk.CallToolRequest, args ResetInput) (*sdk.CallToolResult, ResetOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.driver.ResetCognitiveState()
	s.tick = 0
	s.logger.Debug("model reset")

	return nil, ResetOutput{Message: "model reset to freshly initialized state"}, nil
}

// handleModules lists the registered modules.
func (s *Server) handleModules(ctx context.Context, req *sdk.CallToolRequest, args ModulesInput) (*sdk.CallToolResult, ModulesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modules := s.driver.Modules()
	infos := make([]ModuleInfo, 0, len(modules))
	for _, m := range modules {
		infos = append(infos, ModuleInfo{Name: m.Name(), Settings: m.Settings()})
	}

	return nil, ModulesOutput{Modules: infos, Count: len(infos)}, nil
}

// activations snapshots the blackboard. Callers must hold s.mu.
func (s *Server) activations() map[string]float64 {
	out := make(map[string]float64)
	for _, c := range s.driver.CurrentState().Cogxels().Cogxels() {
		out[string(c.Identifier().Label())] = c.Activation()
	}
	return out
}
