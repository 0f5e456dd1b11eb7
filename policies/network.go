package policies

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Network is a small dense multilayer perceptron with tanh hidden layers
// and a linear output layer. Gradients are computed by hand; the network
// is deliberately tiny so a full autodiff framework is unnecessary.
type Network struct {
	sizes   []int
	weights []*mat.Dense    // weights[l] is (sizes[l+1] x sizes[l])
	biases  []*mat.VecDense // biases[l] has length sizes[l+1]

	// Adam moments
	mW, vW []*mat.Dense
	mB, vB []*mat.VecDense
	step   int
}

// NewNetwork builds a network with the given layer sizes (input first,
// output last), initialized with scaled Gaussian weights from rng.
func NewNetwork(sizes []int, rng *rand.Rand) *Network {
	n := &Network{sizes: sizes}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(1.0 / float64(in))
		w := mat.NewDense(out, in, nil)
		for i := 0; i < out; i++ {
			for j := 0; j < in; j++ {
				w.Set(i, j, rng.NormFloat64()*scale)
			}
		}
		n.weights = append(n.weights, w)
		n.biases = append(n.biases, mat.NewVecDense(out, nil))
		n.mW = append(n.mW, mat.NewDense(out, in, nil))
		n.vW = append(n.vW, mat.NewDense(out, in, nil))
		n.mB = append(n.mB, mat.NewVecDense(out, nil))
		n.vB = append(n.vB, mat.NewVecDense(out, nil))
	}
	return n
}

// InputSize returns the expected observation length.
func (n *Network) InputSize() int {
	return n.sizes[0]
}

// OutputSize returns the length of the output vector.
func (n *Network) OutputSize() int {
	return n.sizes[len(n.sizes)-1]
}

// forwardCache keeps the per-layer activations needed for backprop.
// activations[0] is the input, activations[l+1] the output of layer l.
type forwardCache struct {
	activations []*mat.VecDense
}

// Forward runs the network on one observation and returns the output with
// the cache required by Backward.
func (n *Network) Forward(x []float64) ([]float64, *forwardCache) {
	a := mat.NewVecDense(len(x), append([]float64(nil), x...))
	cache := &forwardCache{activations: []*mat.VecDense{a}}
	last := len(n.weights) - 1
	for l, w := range n.weights {
		out := mat.NewVecDense(n.sizes[l+1], nil)
		out.MulVec(w, a)
		out.AddVec(out, n.biases[l])
		if l != last {
			for i := 0; i < out.Len(); i++ {
				out.SetVec(i, math.Tanh(out.AtVec(i)))
			}
		}
		cache.activations = append(cache.activations, out)
		a = out
	}
	return append([]float64(nil), a.RawVector().Data...), cache
}

// Gradients accumulates parameter gradients across a minibatch.
type Gradients struct {
	W []*mat.Dense
	B []*mat.VecDense
}

// NewGradients allocates a zeroed gradient accumulator shaped like n.
func (n *Network) NewGradients() *Gradients {
	g := &Gradients{}
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		g.W = append(g.W, mat.NewDense(r, c, nil))
		g.B = append(g.B, mat.NewVecDense(n.biases[l].Len(), nil))
	}
	return g
}

// Scale multiplies every gradient by f, typically 1/batchSize.
func (g *Gradients) Scale(f float64) {
	for l := range g.W {
		g.W[l].Scale(f, g.W[l])
		g.B[l].ScaleVec(f, g.B[l])
	}
}

// Norm returns the global L2 norm across all gradients.
func (g *Gradients) Norm() float64 {
	sum := 0.0
	for l := range g.W {
		r, c := g.W[l].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := g.W[l].At(i, j)
				sum += v * v
			}
		}
		for i := 0; i < g.B[l].Len(); i++ {
			v := g.B[l].AtVec(i)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// ClipNorm rescales the gradients so their global norm does not exceed max.
func (g *Gradients) ClipNorm(max float64) {
	norm := g.Norm()
	if norm > max && norm > 0 {
		g.Scale(max / norm)
	}
}

// Backward accumulates into grads the gradient of a scalar loss with
// respect to all parameters, given dLoss/dOutput for the sample that
// produced cache.
func (n *Network) Backward(cache *forwardCache, gradOut []float64, grads *Gradients) {
	delta := mat.NewVecDense(len(gradOut), append([]float64(nil), gradOut...))
	for l := len(n.weights) - 1; l >= 0; l-- {
		prev := cache.activations[l]

		// accumulate dL/dW = delta ⊗ prevᵀ and dL/db = delta
		outer := mat.NewDense(delta.Len(), prev.Len(), nil)
		outer.Outer(1, delta, prev)
		grads.W[l].Add(grads.W[l], outer)
		grads.B[l].AddVec(grads.B[l], delta)

		if l == 0 {
			break
		}
		// propagate through the previous tanh layer
		back := mat.NewVecDense(prev.Len(), nil)
		back.MulVec(n.weights[l].T(), delta)
		for i := 0; i < back.Len(); i++ {
			a := prev.AtVec(i)
			back.SetVec(i, back.AtVec(i)*(1-a*a))
		}
		delta = back
	}
}

// ApplyAdam performs one Adam step with the accumulated gradients.
func (n *Network) ApplyAdam(grads *Gradients, lr float64) {
	const (
		beta1 = 0.9
		beta2 = 0.999
		eps   = 1e-8
	)
	n.step++
	c1 := 1 - math.Pow(beta1, float64(n.step))
	c2 := 1 - math.Pow(beta2, float64(n.step))
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := grads.W[l].At(i, j)
				m := beta1*n.mW[l].At(i, j) + (1-beta1)*g
				v := beta2*n.vW[l].At(i, j) + (1-beta2)*g*g
				n.mW[l].Set(i, j, m)
				n.vW[l].Set(i, j, v)
				n.weights[l].Set(i, j, n.weights[l].At(i, j)-lr*(m/c1)/(math.Sqrt(v/c2)+eps))
			}
		}
		for i := 0; i < n.biases[l].Len(); i++ {
			g := grads.B[l].AtVec(i)
			m := beta1*n.mB[l].AtVec(i) + (1-beta1)*g
			v := beta2*n.vB[l].AtVec(i) + (1-beta2)*g*g
			n.mB[l].SetVec(i, m)
			n.vB[l].SetVec(i, v)
			n.biases[l].SetVec(i, n.biases[l].AtVec(i)-lr*(m/c1)/(math.Sqrt(v/c2)+eps))
		}
	}
}

// networkSnapshot is the serializable form of a network's parameters.
type networkSnapshot struct {
	Sizes   []int         `json:"sizes"`
	Weights [][][]float64 `json:"weights"`
	Biases  [][]float64   `json:"biases"`
}

func (n *Network) snapshot() networkSnapshot {
	s := networkSnapshot{Sizes: append([]int(nil), n.sizes...)}
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		w := make([][]float64, r)
		for i := 0; i < r; i++ {
			w[i] = make([]float64, c)
			for j := 0; j < c; j++ {
				w[i][j] = n.weights[l].At(i, j)
			}
		}
		s.Weights = append(s.Weights, w)
		s.Biases = append(s.Biases, append([]float64(nil), n.biases[l].RawVector().Data...))
	}
	return s
}

func (n *Network) restore(s networkSnapshot) error {
	if len(s.Sizes) != len(n.sizes) {
		return fmt.Errorf("snapshot has %d layers, network has %d", len(s.Sizes), len(n.sizes))
	}
	for l, size := range s.Sizes {
		if size != n.sizes[l] {
			return fmt.Errorf("snapshot layer %d has size %d, network has %d", l, size, n.sizes[l])
		}
	}
	if len(s.Weights) != len(n.weights) || len(s.Biases) != len(n.biases) {
		return fmt.Errorf("snapshot has %d weight layers, network has %d", len(s.Weights), len(n.weights))
	}
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		if len(s.Weights[l]) != r {
			return fmt.Errorf("snapshot weights %d have %d rows, want %d", l, len(s.Weights[l]), r)
		}
		for i := 0; i < r; i++ {
			if len(s.Weights[l][i]) != c {
				return fmt.Errorf("snapshot weights %d row %d has %d cols, want %d", l, i, len(s.Weights[l][i]), c)
			}
			for j := 0; j < c; j++ {
				n.weights[l].Set(i, j, s.Weights[l][i][j])
			}
		}
		if len(s.Biases[l]) != n.biases[l].Len() {
			return fmt.Errorf("snapshot biases %d have length %d, want %d", l, len(s.Biases[l]), n.biases[l].Len())
		}
		for i := range s.Biases[l] {
			n.biases[l].SetVec(i, s.Biases[l][i])
		}
	}
	return nil
}
