package module

// OjaConfig configures Oja-stabilized Hebbian weight adaptation for the
// mutable associative memory.
type OjaConfig struct {
	// LearningRate (eta) controls how fast association weights adapt.
	// Default: 0.05. Oja's rule is self-limiting, so a fixed rate works well.
	LearningRate float64

	// MinWeight is the floor for association weights. Default: 0.01.
	MinWeight float64

	// MaxWeight is the ceiling for association weights. Default: 0.95.
	MaxWeight float64
}

// DefaultOjaConfig returns the default adaptation configuration.
func DefaultOjaConfig() OjaConfig {
	return OjaConfig{
		LearningRate: 0.05,
		MinWeight:    0.01,
		MaxWeight:    0.95,
	}
}

// OjaUpdate computes the new association weight using Oja's rule.
//
// Oja's rule: dW = eta * (pre * post - post^2 * W)
//
// The post^2 * W term is the forgetting factor that prevents unbounded
// weight growth; naive Hebbian learning causes runaway weights in
// propagation networks. The result is clamped to [MinWeight, MaxWeight].
func OjaUpdate(currentWeight, pre, post float64, cfg OjaConfig) float64 {
	hebbian := pre * post
	forgetting := post * post * currentWeight
	dw := cfg.LearningRate * (hebbian - forgetting)
	return clampWeight(currentWeight+dw, cfg.MinWeight, cfg.MaxWeight)
}

// clampWeight restricts w to [min, max].
func clampWeight(w, min, max float64) float64 {
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}
