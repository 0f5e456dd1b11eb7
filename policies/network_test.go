package policies

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := NewNetwork([]int{4, 8, 3}, rng)
	out, _ := net.Forward([]float64{0.1, 0.2, 0.3, 0.4})
	if len(out) != 3 {
		t.Fatalf("output has length %d, want 3", len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("output[%d] = %g is not finite", i, v)
		}
	}
}

func TestSeededInitDeterministic(t *testing.T) {
	a := NewNetwork([]int{3, 5, 2}, rand.New(rand.NewSource(7)))
	b := NewNetwork([]int{3, 5, 2}, rand.New(rand.NewSource(7)))
	in := []float64{0.5, -0.2, 0.9}
	outA, _ := a.Forward(in)
	outB, _ := b.Forward(in)
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("same seed produced different outputs: %g vs %g", outA[i], outB[i])
		}
	}
}

// Backward is checked against central finite differences of the first
// output component.
func TestBackwardMatchesNumericalGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net := NewNetwork([]int{2, 4, 1}, rng)
	in := []float64{0.3, -0.7}

	_, cache := net.Forward(in)
	grads := net.NewGradients()
	net.Backward(cache, []float64{1}, grads)

	const h = 1e-6
	for l := range net.weights {
		r, c := net.weights[l].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				orig := net.weights[l].At(i, j)
				net.weights[l].Set(i, j, orig+h)
				up, _ := net.Forward(in)
				net.weights[l].Set(i, j, orig-h)
				down, _ := net.Forward(in)
				net.weights[l].Set(i, j, orig)

				numeric := (up[0] - down[0]) / (2 * h)
				analytic := grads.W[l].At(i, j)
				if math.Abs(numeric-analytic) > 1e-4*(1+math.Abs(numeric)) {
					t.Fatalf("layer %d weight (%d,%d): analytic %g vs numeric %g", l, i, j, analytic, numeric)
				}
			}
		}
		for i := 0; i < net.biases[l].Len(); i++ {
			orig := net.biases[l].AtVec(i)
			net.biases[l].SetVec(i, orig+h)
			up, _ := net.Forward(in)
			net.biases[l].SetVec(i, orig-h)
			down, _ := net.Forward(in)
			net.biases[l].SetVec(i, orig)

			numeric := (up[0] - down[0]) / (2 * h)
			analytic := grads.B[l].AtVec(i)
			if math.Abs(numeric-analytic) > 1e-4*(1+math.Abs(numeric)) {
				t.Fatalf("layer %d bias %d: analytic %g vs numeric %g", l, i, analytic, numeric)
			}
		}
	}
}

func TestAdamReducesRegressionLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	net := NewNetwork([]int{1, 8, 1}, rng)

	inputs := [][]float64{{-1}, {-0.5}, {0}, {0.5}, {1}}
	targets := []float64{-2, -1, 0, 1, 2}

	mse := func() float64 {
		sum := 0.0
		for i, in := range inputs {
			out, _ := net.Forward(in)
			d := out[0] - targets[i]
			sum += d * d
		}
		return sum / float64(len(inputs))
	}

	before := mse()
	for iter := 0; iter < 300; iter++ {
		grads := net.NewGradients()
		for i, in := range inputs {
			out, cache := net.Forward(in)
			net.Backward(cache, []float64{2 * (out[0] - targets[i]) / float64(len(inputs))}, grads)
		}
		net.ApplyAdam(grads, 0.01)
	}
	after := mse()
	if after >= before {
		t.Fatalf("regression loss did not decrease: %g -> %g", before, after)
	}
	if after > before/2 {
		t.Errorf("regression barely improved: %g -> %g", before, after)
	}
}

func TestGradientClipNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := NewNetwork([]int{2, 3, 1}, rng)
	grads := net.NewGradients()
	for l := range grads.W {
		r, c := grads.W[l].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				grads.W[l].Set(i, j, 10)
			}
		}
	}
	grads.ClipNorm(0.5)
	if norm := grads.Norm(); norm > 0.5+1e-9 {
		t.Errorf("clipped norm = %g, want <= 0.5", norm)
	}

	small := net.NewGradients()
	small.W[0].Set(0, 0, 0.1)
	small.ClipNorm(0.5)
	if got := small.W[0].At(0, 0); got != 0.1 {
		t.Errorf("small gradients must pass through unchanged, got %g", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	src := NewNetwork([]int{3, 6, 2}, rand.New(rand.NewSource(21)))
	dst := NewNetwork([]int{3, 6, 2}, rand.New(rand.NewSource(99)))
	if err := dst.restore(src.snapshot()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	in := []float64{0.2, 0.4, -0.6}
	a, _ := src.Forward(in)
	b, _ := dst.Forward(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("restored network output differs: %g vs %g", a[i], b[i])
		}
	}

	wrong := NewNetwork([]int{3, 4, 2}, rand.New(rand.NewSource(1)))
	if err := wrong.restore(src.snapshot()); err == nil {
		t.Errorf("expected a shape mismatch error")
	}
}
