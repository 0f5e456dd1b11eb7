package policies

import "golang.org/x/exp/rand"

// Critic maps an observation to a scalar state-value estimate, trained by
// regression toward empirical returns.
type Critic struct {
	net *Network
}

func NewCritic(obsSize int, hidden []int, rng *rand.Rand) *Critic {
	sizes := append([]int{obsSize}, hidden...)
	sizes = append(sizes, 1)
	return &Critic{net: NewNetwork(sizes, rng)}
}

// Value estimates V(obs).
func (c *Critic) Value(obs []float64) float64 {
	out, _ := c.net.Forward(obs)
	return out[0]
}

func (c *Critic) eval(obs []float64) (float64, *forwardCache) {
	out, cache := c.net.Forward(obs)
	return out[0], cache
}

// backward accumulates the gradient of scale·V(obs) into grads.
func (c *Critic) backward(cache *forwardCache, scale float64, grads *Gradients) {
	c.net.Backward(cache, []float64{scale}, grads)
}
