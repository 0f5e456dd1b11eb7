package types

import "fmt"

// Defaults for the trainer configuration.
const (
	DefaultBatchSize     = 128
	DefaultMinibatchSize = 32
	DefaultGamma         = 0.99
	DefaultClipRatio     = 0.2
	DefaultActorLR       = 3e-4
	DefaultCriticLR      = 1e-3
	DefaultEpochs        = 4
	DefaultRewardWindow  = 10
	DefaultWarmup        = 20
)

// TrainerConfig carries the recognized training options.
type TrainerConfig struct {
	Species  string
	Episodes int
	// BatchSize is the minimum number of buffered transitions before an
	// update runs.
	BatchSize int
	// MinibatchSize is the size of the shuffled minibatches within an
	// update epoch.
	MinibatchSize int
	// Gamma is the discount factor for one-step TD advantages.
	Gamma float64
	// ClipRatio is the PPO surrogate clipping epsilon.
	ClipRatio float64
	ActorLR   float64
	CriticLR  float64
	// Epochs is the number of optimization passes per update.
	Epochs int
	// RewardWindow is the trailing-average window for best-policy tracking.
	RewardWindow int
	// Warmup is the number of episodes before best-policy tracking starts.
	Warmup int
	Seed   uint64
}

// WithDefaults fills zero-valued fields with the package defaults.
func (c TrainerConfig) WithDefaults() TrainerConfig {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MinibatchSize == 0 {
		c.MinibatchSize = DefaultMinibatchSize
	}
	if c.Gamma == 0 {
		c.Gamma = DefaultGamma
	}
	if c.ClipRatio == 0 {
		c.ClipRatio = DefaultClipRatio
	}
	if c.ActorLR == 0 {
		c.ActorLR = DefaultActorLR
	}
	if c.CriticLR == 0 {
		c.CriticLR = DefaultCriticLR
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.RewardWindow == 0 {
		c.RewardWindow = DefaultRewardWindow
	}
	if c.Warmup == 0 {
		c.Warmup = DefaultWarmup
	}
	return c
}

// Validate rejects configurations that would derail training at startup
// rather than mid-run.
func (c TrainerConfig) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if c.BatchSize < 2 {
		return fmt.Errorf("batch size must be at least 2, got %d", c.BatchSize)
	}
	if c.MinibatchSize < 2 {
		return fmt.Errorf("minibatch size must be at least 2, got %d", c.MinibatchSize)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0,1], got %g", c.Gamma)
	}
	if c.ClipRatio <= 0 || c.ClipRatio >= 1 {
		return fmt.Errorf("clip ratio must be in (0,1), got %g", c.ClipRatio)
	}
	if c.ActorLR <= 0 || c.CriticLR <= 0 {
		return fmt.Errorf("learning rates must be positive, got actor %g critic %g", c.ActorLR, c.CriticLR)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	return nil
}
