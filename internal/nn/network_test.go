package nn

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats/scalar"
)

// permutationScenario returns the reference input [1..size] and the target
// target[i] = input[(i*5+3) mod size] + i.
func permutationScenario(size int) (input, target []float32) {
	input = make([]float32, size)
	target = make([]float32, size)
	for i := range input {
		input[i] = float32(i + 1)
	}
	for i := range target {
		target[i] = input[(i*5+3)%size] + float32(i)
	}
	return input, target
}

func newTestNetwork(t *testing.T, layers, size int) *Network {
	t.Helper()
	net, err := NewNetwork(Config{Layers: layers, Size: size})
	require.NoError(t, err)
	return net
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, Config{Layers: 2, Size: 8}, DefaultConfig())

	assert.ErrorIs(t, Config{Layers: 0, Size: 8}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Layers: 2, Size: 0}.Validate(), ErrInvalidConfig)

	_, err := NewNetwork(Config{Layers: -1, Size: 4})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewNetwork(t *testing.T) {
	net := newTestNetwork(t, 3, 5)

	assert.Equal(t, 3, net.Len())
	assert.Equal(t, 5, net.Size())
	assert.Len(t, net.InputTensor(), 5)
	assert.Len(t, net.OutputTensor(), 5)
	assert.Len(t, net.OutputGradientTensor(), 5)
	assert.Len(t, net.InputGradientTensor(), 5)
	assert.Len(t, net.Parameters(), 6)
	assert.Equal(t, StateIdle, net.State())
	assert.Panics(t, func() { net.Layer(3) })
}

// TestNetwork_ReferenceScenario runs the 2-layer, size-8 scenario from an
// identity start. Every gate is open, so each block doubles its input on
// the way forward and doubles its output gradient on the way back.
func TestNetwork_ReferenceScenario(t *testing.T) {
	net := newTestNetwork(t, 2, 8)
	input, target := permutationScenario(8)

	require.NoError(t, net.ForwardFrom(input))
	for i, x := range input {
		assert.Equal(t, 4*x, net.OutputTensor()[i])
	}

	require.NoError(t, net.BackwardFrom(target))

	wantGrad := []float32{0, 6, 4, 10, 8, 14, 20, 18}
	assert.Equal(t, wantGrad, net.OutputGradientTensor(), "prediction - target")
	assert.InDelta(t, 568, net.Loss(), 1e-3)

	inGrad := net.InputGradientTensor()
	for i, g := range wantGrad {
		assert.Equal(t, 4*g, inGrad[i])
	}
	assert.True(t, net.inputGrad.IsFinite())
	assert.NotZero(t, net.inputGrad.MaxAbs())
}

func TestNetwork_Reproducible(t *testing.T) {
	run := func() ([]float32, map[string][]float32) {
		net := newTestNetwork(t, 2, 8)
		input, target := permutationScenario(8)

		copy(net.InputTensor(), input)
		require.NoError(t, net.Forward())
		copy(net.OutputGradientTensor(), target)
		require.NoError(t, net.Backward())

		grads := make(map[string][]float32)
		for i := 0; i < net.Len(); i++ {
			for _, p := range net.Layer(i).Parameters() {
				grads[fmt.Sprintf("%d.%s", i, p.Name())] = p.Grad().Clone()
			}
		}
		return net.inputGrad.Clone(), grads
	}

	inGrad1, grads1 := run()
	inGrad2, grads2 := run()

	assert.Equal(t, inGrad1, inGrad2, "input gradient must be bit-for-bit identical")
	assert.Equal(t, grads1, grads2)
}

func TestNetwork_RepeatedPassSameInputGradient(t *testing.T) {
	net := newTestNetwork(t, 2, 8)
	input, target := permutationScenario(8)

	require.NoError(t, net.ForwardFrom(input))
	require.NoError(t, net.BackwardFrom(target))
	first := net.inputGrad.Clone()

	require.NoError(t, net.ForwardFrom(input))
	require.NoError(t, net.BackwardFrom(target))

	assert.Equal(t, first, net.InputGradientTensor())
}

// randomizeNetwork loads W = I + U(-0.3, 0.3), b = U(-0.2, 0.2) into every block.
func randomizeNetwork(t *testing.T, net *Network, rng *rand.Rand) {
	t.Helper()
	size := net.Size()
	sd := make(map[string][]float32)
	for i := 0; i < net.Len(); i++ {
		w := make([]float32, size*size)
		for j := range w {
			w[j] = rng.Float32()*0.6 - 0.3
		}
		for j := 0; j < size; j++ {
			w[j*size+j]++
		}
		b := make([]float32, size)
		for j := range b {
			b[j] = rng.Float32()*0.4 - 0.2
		}
		sd[fmt.Sprintf("%d.weight", i)] = w
		sd[fmt.Sprintf("%d.bias", i)] = b
	}
	require.NoError(t, net.LoadStateDict(sd))
}

func uniform(rng *rand.Rand, n int, lo, hi float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = lo + rng.Float32()*(hi-lo)
	}
	return s
}

// lossAt runs Forward on input and returns 0.5*||target - output||² in float64.
func lossAt(t *testing.T, net *Network, input, target []float32) float64 {
	t.Helper()
	require.NoError(t, net.ForwardFrom(input))
	var loss float64
	for i, y := range net.OutputTensor() {
		d := float64(target[i] - y)
		loss += 0.5 * d * d
	}
	return loss
}

// checkDerivative compares an analytic derivative against central finite
// differences of f around x0. It reports false when f has a kink within the
// step, where no finite difference is meaningful.
func checkDerivative(t *testing.T, name string, analytic float32, f func(float64) float64, x0 float64) bool {
	t.Helper()
	const step = 1e-3

	central := fd.Derivative(f, x0, &fd.Settings{Formula: fd.Central, Step: step})
	forward := fd.Derivative(f, x0, &fd.Settings{Formula: fd.Forward, Step: step})
	backward := fd.Derivative(f, x0, &fd.Settings{Formula: fd.Backward, Step: step})
	if !scalar.EqualWithinAbsOrRel(forward, backward, 1e-2, 1e-2) {
		return false
	}

	assert.True(t, scalar.EqualWithinAbsOrRel(float64(analytic), central, 5e-3, 1e-2),
		"%s: analytic %v, numeric %v", name, analytic, central)
	return true
}

func TestNetwork_GradientCheck(t *testing.T) {
	for layers := 1; layers <= 3; layers++ {
		t.Run(fmt.Sprintf("layers=%d", layers), func(t *testing.T) {
			const size = 4
			rng := rand.New(rand.NewSource(int64(10 + layers)))

			net := newTestNetwork(t, layers, size)
			randomizeNetwork(t, net, rng)
			input := uniform(rng, size, -1, 1)
			target := uniform(rng, size, -1, 1)

			require.NoError(t, net.ForwardFrom(input))
			require.NoError(t, net.BackwardFrom(target))

			analyticIn := net.inputGrad.Clone()
			analytic := make([][]float32, 0, 2*layers)
			for _, p := range net.Parameters() {
				analytic = append(analytic, p.Grad().Clone())
			}

			checked, total := 0, 0
			for pi, p := range net.Parameters() {
				values := p.Value().Data()
				for j := range values {
					orig := values[j]
					f := func(v float64) float64 {
						values[j] = float32(v)
						defer func() { values[j] = orig }()
						return lossAt(t, net, input, target)
					}
					total++
					if checkDerivative(t, fmt.Sprintf("param %d[%d]", pi, j), analytic[pi][j], f, float64(orig)) {
						checked++
					}
				}
			}

			for j := range input {
				perturbed := append([]float32(nil), input...)
				f := func(v float64) float64 {
					perturbed[j] = float32(v)
					return lossAt(t, net, perturbed, target)
				}
				total++
				if checkDerivative(t, fmt.Sprintf("input[%d]", j), analyticIn[j], f, float64(input[j])) {
					checked++
				}
			}

			assert.GreaterOrEqual(t, checked, total*9/10, "too many entries sat on a ReLU kink")
		})
	}
}

func TestNetwork_BatchAccumulation(t *testing.T) {
	const size, k = 4, 3
	rng := rand.New(rand.NewSource(99))

	base := newTestNetwork(t, 2, size)
	randomizeNetwork(t, base, rng)
	params := base.StateDict()

	inputs := make([][]float32, k)
	targets := make([][]float32, k)
	for e := 0; e < k; e++ {
		inputs[e] = uniform(rng, size, -1, 1)
		targets[e] = uniform(rng, size, -1, 1)
	}

	// Sum of single-example gradients, each on a fresh copy.
	want := make([][]float32, len(base.Parameters()))
	for e := 0; e < k; e++ {
		single := newTestNetwork(t, 2, size)
		require.NoError(t, single.LoadStateDict(params))
		require.NoError(t, single.ForwardFrom(inputs[e]))
		require.NoError(t, single.BackwardFrom(targets[e]))
		for pi, p := range single.Parameters() {
			if want[pi] == nil {
				want[pi] = make([]float32, p.Grad().Len())
			}
			for j, g := range p.Grad().Data() {
				want[pi][j] += g
			}
		}
	}

	for e := 0; e < k; e++ {
		require.NoError(t, base.ForwardFrom(inputs[e]))
		require.NoError(t, base.BackwardFrom(targets[e]))
	}

	for pi, p := range base.Parameters() {
		got := p.Grad().Data()
		for j := range got {
			assert.InDelta(t, want[pi][j], got[j], 1e-5, "param %d[%d]", pi, j)
		}
	}

	require.NoError(t, base.Update(0.01))
	for _, p := range base.Parameters() {
		assert.Equal(t, make([]float32, p.Grad().Len()), p.Grad().Data(), "%s reset to zero", p.Name())
	}
}

func TestNetwork_UpdateDescends(t *testing.T) {
	const lr = 1e-5
	net := newTestNetwork(t, 2, 8)
	input, target := permutationScenario(8)

	require.NoError(t, net.ForwardFrom(input))
	require.NoError(t, net.BackwardFrom(target))
	before := net.Loss()

	w := net.Layer(0).Weight()
	wantW := w.Value().Clone()
	for j, g := range w.Grad().Data() {
		wantW[j] -= lr * g
	}

	require.NoError(t, net.Update(lr))
	for j, v := range w.Value().Data() {
		assert.InDelta(t, wantW[j], v, 1e-6, "weight %d", j)
	}

	require.NoError(t, net.ForwardFrom(input))
	require.NoError(t, net.BackwardFrom(target))
	assert.Less(t, net.Loss(), before)
}

func TestNetwork_PassOrder(t *testing.T) {
	input, target := permutationScenario(4)

	t.Run("backward before forward", func(t *testing.T) {
		net := newTestNetwork(t, 2, 4)
		copy(net.OutputGradientTensor(), target)
		assert.ErrorIs(t, net.Backward(), ErrPassOrder)
		assert.Equal(t, target, net.OutputGradientTensor(), "refused backward leaves target intact")
	})

	t.Run("backward twice", func(t *testing.T) {
		net := newTestNetwork(t, 2, 4)
		require.NoError(t, net.ForwardFrom(input))
		require.NoError(t, net.BackwardFrom(target))
		grad := append([]float32(nil), net.OutputGradientTensor()...)

		assert.ErrorIs(t, net.Backward(), ErrPassOrder)
		assert.ErrorIs(t, net.BackwardFrom(target), ErrPassOrder)
		assert.Equal(t, grad, net.OutputGradientTensor())
	})

	t.Run("layer reset between forward and backward", func(t *testing.T) {
		net := newTestNetwork(t, 2, 2)
		require.NoError(t, net.ForwardFrom([]float32{1, 2}))
		net.Layer(1).ZeroForward()

		copy(net.OutputGradientTensor(), []float32{10, 10})
		assert.ErrorIs(t, net.Backward(), ErrPassOrder)
		assert.Equal(t, []float32{10, 10}, net.OutputGradientTensor(), "target left intact")
		assert.Equal(t, StateForward, net.State())
		assert.Zero(t, net.Loss())
	})

	t.Run("update after forward", func(t *testing.T) {
		net := newTestNetwork(t, 2, 4)
		require.NoError(t, net.ForwardFrom(input))
		assert.ErrorIs(t, net.Update(0.1), ErrPassOrder)
	})

	t.Run("update then backward", func(t *testing.T) {
		net := newTestNetwork(t, 2, 4)
		require.NoError(t, net.ForwardFrom(input))
		require.NoError(t, net.BackwardFrom(target))
		require.NoError(t, net.Update(0.1))
		assert.ErrorIs(t, net.BackwardFrom(target), ErrPassOrder)
	})
}

func TestNetwork_ShapeMismatch(t *testing.T) {
	net := newTestNetwork(t, 2, 4)

	assert.ErrorIs(t, net.ForwardFrom([]float32{1, 2, 3}), ErrShapeMismatch)
	require.NoError(t, net.ForwardFrom([]float32{1, 2, 3, 4}))
	assert.ErrorIs(t, net.BackwardFrom([]float32{1, 2, 3, 4, 5}), ErrShapeMismatch)
	assert.Equal(t, StateForward, net.State())
}

func TestNetwork_StateDict(t *testing.T) {
	src := newTestNetwork(t, 2, 3)
	randomizeNetwork(t, src, rand.New(rand.NewSource(5)))

	sd := src.StateDict()
	assert.Len(t, sd, 4)
	assert.Contains(t, sd, "0.weight")
	assert.Contains(t, sd, "1.bias")

	dst := newTestNetwork(t, 2, 3)
	require.NoError(t, dst.LoadStateDict(sd))
	assert.Equal(t, sd, dst.StateDict())

	delete(sd, "1.bias")
	assert.Error(t, dst.LoadStateDict(sd))
}

func TestNetwork_LossMatchesOutput(t *testing.T) {
	net := newTestNetwork(t, 1, 3)
	require.NoError(t, net.ForwardFrom([]float32{1, -2, 0.5}))
	require.NoError(t, net.BackwardFrom([]float32{0, 0, 0}))

	var want float32
	for _, y := range net.OutputTensor() {
		want += 0.5 * y * y
	}
	assert.InDelta(t, want, net.Loss(), 1e-5)
	assert.False(t, math32.IsNaN(net.Loss()))
}
