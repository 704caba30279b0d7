package mcp

// StepInput defines the input for the cogsim_step tool.
type StepInput struct {
	Input map[string]float64 `json:"input,omitempty" jsonschema:"Input pattern: label to activation value"`
	Ticks int                `json:"ticks,omitempty" jsonschema:"Number of ticks to advance (default: 1); the input is fed to every tick"`
}

// StepOutput defines the output for the cogsim_step tool.
type StepOutput struct {
	Tick        int                `json:"tick" jsonschema:"Tick count after stepping"`
	Activations map[string]float64 `json:"activations" jsonschema:"Blackboard activations after the last tick"`
}

// StateInput defines the input for the cogsim_state tool.
type StateInput struct{}

// StateOutput defines the output for the cogsim_state tool.
type StateOutput struct {
	Tick        int                `json:"tick" jsonschema:"Ticks executed so far"`
	Count       int                `json:"count" jsonschema:"Number of cogxels on the blackboard"`
	Activations map[string]float64 `json:"activations" jsonschema:"Current blackboard activations"`
}

// ResetInput defines the input for the cogsim_reset tool.
type ResetInput struct{}

// ResetOutput defines the output for the cogsim_reset tool.
type ResetOutput struct {
	Message string `json:"message" jsonschema:"Human-readable result message"`
}

// ModulesInput defines the input for the cogsim_modules tool.
type ModulesInput struct{}

// ModulesOutput defines the output for the cogsim_modules tool.
type ModulesOutput struct {
	Modules []ModuleInfo `json:"modules" jsonschema:"Modules in registration order"`
	Count   int          `json:"count" jsonschema:"Number of modules"`
}

// ModuleInfo describes one registered module.
type ModuleInfo struct {
	Name     string         `json:"name"`
	Settings map[string]any `json:"settings,omitempty"`
}
