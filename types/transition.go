package types

// Transition is one unit of on-policy experience: the observation, the
// unclipped sampled action, the reward, the next observation, the terminal
// flag and the log-probability of the action under the policy that
// collected it.
type Transition struct {
	State     []float64
	Action    []float64
	Reward    float64
	NextState []float64
	Done      bool
	LogProb   float64
}

// ExperienceBuffer is an insertion-ordered collection of transitions for
// one training pass. It is fully cleared after every policy update; no
// experience survives across updates.
type ExperienceBuffer struct {
	transitions []Transition
}

func NewExperienceBuffer() *ExperienceBuffer {
	return &ExperienceBuffer{transitions: make([]Transition, 0)}
}

// Append adds a transition at the end of the buffer.
func (b *ExperienceBuffer) Append(t Transition) {
	b.transitions = append(b.transitions, t)
}

func (b *ExperienceBuffer) Len() int {
	return len(b.transitions)
}

// Transitions returns the stored transitions in insertion order. The
// returned slice aliases the buffer and is invalidated by Clear.
func (b *ExperienceBuffer) Transitions() []Transition {
	return b.transitions
}

// Clear drops every stored transition.
func (b *ExperienceBuffer) Clear() {
	b.transitions = b.transitions[:0]
}
