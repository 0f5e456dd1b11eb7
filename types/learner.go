package types

// UpdateStats summarizes one policy update for reporting.
type UpdateStats struct {
	ActorLoss  float64
	CriticLoss float64
	// Batches is the number of minibatch gradient steps applied.
	Batches int
}

// Learner is the actor-critic pair the trainer optimizes. Implementations
// are free to use any differentiable function approximator; the trainer
// only relies on this contract.
type Learner interface {
	// SampleAction draws an action from the current policy for the given
	// observation and returns it with its log-probability. The returned
	// action is unclipped; environments clamp it on input.
	SampleAction(obs []float64) (action []float64, logProb float64)
	// MeanAction returns the deterministic mode of the policy, used for
	// evaluation.
	MeanAction(obs []float64) []float64
	// Update performs one full PPO update over the buffered experience.
	// ok is false when the batch was degenerate and skipped.
	Update(buffer *ExperienceBuffer) (stats UpdateStats, ok bool)
	// Snapshot serializes all learnable parameters losslessly.
	Snapshot() ([]byte, error)
	// Restore replaces all learnable parameters from a snapshot.
	Restore(data []byte) error
}
