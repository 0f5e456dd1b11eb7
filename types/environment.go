package types

// Info is a fixed-schema summary of the environment state after a step,
// attached to step results and episode reports for external consumers.
type Info struct {
	Step     int     `json:"step"`
	Health   float64 `json:"health"`
	Height   float64 `json:"height"`
	Fruits   int     `json:"fruits"`
	Stage    string  `json:"stage"`
	Terminal string  `json:"terminal,omitempty"`
}

// StepResult packages one environment transition.
// Done marks a terminal state (death or harvest), Truncated marks the
// episode step cap. Both end the episode.
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool
	Truncated   bool
	Info        Info
}

// Environment is the simulator contract the trainer drives. Implementations
// clamp out-of-range actions locally instead of returning errors.
type Environment interface {
	// Reset starts a new episode and returns the initial observation.
	Reset() ([]float64, error)
	// Step applies a continuous action vector and advances one timestep.
	Step(action []float64) (*StepResult, error)
	// ObservationSize is the length of observation vectors.
	ObservationSize() int
	// ActionSize is the length of action vectors.
	ActionSize() int
}
