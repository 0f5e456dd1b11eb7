package policies

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// stdFloor keeps the action distribution from collapsing numerically.
const stdFloor = 1e-3

// GaussianActor maps an observation to an independent per-dimension
// Gaussian over the action components. Means are bounded to [-1,1] with a
// tanh, standard deviations are kept positive with a softplus plus a small
// floor. Sampling returns the unclipped draw; environments clamp it.
type GaussianActor struct {
	net    *Network
	dims   int
	normal distuv.Normal
}

// NewGaussianActor builds an actor with the given hidden layout. The
// network's output holds the raw means followed by the raw deviations.
func NewGaussianActor(obsSize, actionSize int, hidden []int, rng *rand.Rand, src rand.Source) *GaussianActor {
	sizes := append([]int{obsSize}, hidden...)
	sizes = append(sizes, 2*actionSize)
	return &GaussianActor{
		net:    NewNetwork(sizes, rng),
		dims:   actionSize,
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

func sigmoid(x float64) float64 {
	if x < -30 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}

// actorEval is one forward pass through the actor, keeping everything the
// update step needs to backpropagate.
type actorEval struct {
	mean   []float64
	std    []float64
	rawStd []float64
	cache  *forwardCache
}

func (a *GaussianActor) eval(obs []float64) actorEval {
	out, cache := a.net.Forward(obs)
	ev := actorEval{
		mean:   make([]float64, a.dims),
		std:    make([]float64, a.dims),
		rawStd: make([]float64, a.dims),
		cache:  cache,
	}
	for d := 0; d < a.dims; d++ {
		ev.mean[d] = math.Tanh(out[d])
		ev.rawStd[d] = out[a.dims+d]
		ev.std[d] = softplus(ev.rawStd[d]) + stdFloor
	}
	return ev
}

// logProb of an unclipped action under the evaluated distribution.
func (ev actorEval) logProb(action []float64) float64 {
	lp := 0.0
	for d := range action {
		z := (action[d] - ev.mean[d]) / ev.std[d]
		lp += -0.5*z*z - math.Log(ev.std[d]) - 0.5*math.Log(2*math.Pi)
	}
	return lp
}

// Sample draws an action and returns it with its log-probability. The
// log-probability is computed on the raw draw before any clipping.
func (a *GaussianActor) Sample(obs []float64) ([]float64, float64) {
	ev := a.eval(obs)
	action := make([]float64, a.dims)
	for d := 0; d < a.dims; d++ {
		action[d] = ev.mean[d] + ev.std[d]*a.normal.Rand()
	}
	return action, ev.logProb(action)
}

// Mean returns the deterministic mode of the policy.
func (a *GaussianActor) Mean(obs []float64) []float64 {
	ev := a.eval(obs)
	return ev.mean
}

// backward accumulates the gradient of scale·logProb(action) with respect
// to the actor parameters.
func (a *GaussianActor) backward(ev actorEval, action []float64, scale float64, grads *Gradients) {
	gradOut := make([]float64, 2*a.dims)
	for d := 0; d < a.dims; d++ {
		diff := action[d] - ev.mean[d]
		variance := ev.std[d] * ev.std[d]

		// dlogp/dmean through the tanh bounding
		dMean := diff / variance
		gradOut[d] = scale * dMean * (1 - ev.mean[d]*ev.mean[d])

		// dlogp/dstd through the softplus transform
		dStd := diff*diff/(variance*ev.std[d]) - 1/ev.std[d]
		gradOut[a.dims+d] = scale * dStd * sigmoid(ev.rawStd[d])
	}
	a.net.Backward(ev.cache, gradOut, grads)
}
