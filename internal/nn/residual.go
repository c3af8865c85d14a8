package nn

import (
	"fmt"

	"github.com/born-ml/resblock/internal/backend/cpu"
	"github.com/born-ml/resblock/internal/tensor"
	"gonum.org/v1/gonum/blas"
)

// ResidualBlock is a residual linear + ReLU layer.
//
// Performs the transformation: y = x + ReLU(W @ x + b)
// where:
//   - x is the input vector with shape [size]
//   - W is the weight matrix with shape [size, size]
//   - b is the bias vector with shape [size]
//   - y is the output vector with shape [size]
//
// The weight starts as the identity matrix and the bias as zeros.
//
// A training pass is strictly ordered:
//
//	ZeroForward → Forward → ZeroBackward → Backward → ... → Update
//
// Any other order returns ErrPassOrder. Backward adds into the weight and
// bias gradients, so several examples can be accumulated before one Update.
//
// Example:
//
//	block, _ := nn.NewResidualBlock(8)
//	block.ZeroForward()
//	_ = block.Forward(x)
//	_ = block.ZeroBackward()
//	_ = block.Backward(dy)
//	_ = block.Update(0.01)
type ResidualBlock struct {
	size  int
	state PassState

	weight *Parameter // [size, size]
	bias   *Parameter // [size]

	// Forward scratch.
	input   *tensor.Buffer
	product *tensor.Buffer // W @ x + b, the activation input
	output  *tensor.Buffer // x + ReLU(product)

	// Backward scratch. outputGrad is written only by Backward.
	outputGrad     *tensor.Buffer
	activationGrad *tensor.Buffer
	inputGrad      *tensor.Buffer
}

// NewResidualBlock creates a residual block of the given size.
func NewResidualBlock(size int) (*ResidualBlock, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: residual block size %d must be positive", ErrShapeMismatch, size)
	}

	weight, err := newParameter("weight", tensor.Shape{size, size})
	if err != nil {
		return nil, err
	}
	bias, err := newParameter("bias", tensor.Shape{size})
	if err != nil {
		return nil, err
	}
	Identity(weight.Value())
	Zeros(bias.Value())

	l := &ResidualBlock{
		size:   size,
		weight: weight,
		bias:   bias,
	}
	for _, b := range []**tensor.Buffer{
		&l.input, &l.product, &l.output,
		&l.outputGrad, &l.activationGrad, &l.inputGrad,
	} {
		if *b, err = tensor.Vector(size); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// ZeroForward clears the product and output scratch for a new example.
// It is valid in every state.
func (l *ResidualBlock) ZeroForward() {
	l.product.Zero()
	l.output.Zero()
	l.state = StateForwardZeroed
}

// Forward computes output = input + ReLU(W @ input + bias).
//
// input is copied into the layer and retained for Backward.
func (l *ResidualBlock) Forward(input []float32) error {
	if err := l.state.expect("ResidualBlock.Forward", StateForwardZeroed); err != nil {
		return err
	}
	if err := l.input.CopyFrom(input); err != nil {
		return fmt.Errorf("ResidualBlock.Forward: input: %w", err)
	}

	n := l.size
	x := l.input.Data()
	w := l.weight.Value().Data()
	product := l.product.Data()
	output := l.output.Data()

	// product = W @ x, accumulated into the zeroed buffer.
	if err := cpu.GemmStridedBatched(blas.NoTrans, blas.NoTrans, n, 1, n,
		1, w, n, n*n, x, 1, n, 1, product, 1, n, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Forward: %w", err)
	}
	if err := cpu.Axpy(n, 1, l.bias.Value().Data(), 1, product, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Forward: %w", err)
	}

	// residual
	if err := cpu.Axpy(n, 1, x, 1, output, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Forward: %w", err)
	}
	if err := cpu.ReLUForward(n, 1, product, 1, output); err != nil {
		return fmt.Errorf("ResidualBlock.Forward: %w", err)
	}

	l.state = StateForward
	return nil
}

// ZeroBackward clears the activation and input gradients. The output
// gradient belongs to the caller and is left alone.
func (l *ResidualBlock) ZeroBackward() error {
	if err := l.state.expect("ResidualBlock.ZeroBackward", StateForward); err != nil {
		return err
	}
	l.activationGrad.Zero()
	l.inputGrad.Zero()
	l.state = StateBackwardZeroed
	return nil
}

// Backward propagates outputGrad through the block against the input
// retained by Forward.
//
// The residual path passes outputGrad straight to the input gradient. The
// activation path gates it by the sign of the forward product, then:
//
//	bias grad   += g
//	weight grad += g ⊗ input
//	input grad  += Wᵀ @ g
func (l *ResidualBlock) Backward(outputGrad []float32) error {
	if err := l.state.expect("ResidualBlock.Backward", StateBackwardZeroed); err != nil {
		return err
	}
	if err := l.outputGrad.CopyFrom(outputGrad); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: output gradient: %w", err)
	}

	n := l.size
	dy := l.outputGrad.Data()
	g := l.activationGrad.Data()
	dx := l.inputGrad.Data()

	// residual
	if err := cpu.Axpy(n, 1, dy, 1, dx, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: %w", err)
	}
	if err := cpu.ReLUBackward(n, 1, dy, l.product.Data(), 1, g); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: %w", err)
	}

	if err := cpu.Axpy(n, 1, g, 1, l.bias.Grad().Data(), 1); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: %w", err)
	}
	// weight grad [n,n] += g [n,1] @ (x [n,1])ᵀ
	if err := cpu.GemmStridedBatched(blas.NoTrans, blas.Trans, n, n, 1,
		1, g, 1, n, l.input.Data(), 1, n, 1, l.weight.Grad().Data(), n, n*n, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: %w", err)
	}
	// input grad [n,1] += Wᵀ @ g
	if err := cpu.GemmStridedBatched(blas.Trans, blas.NoTrans, n, 1, n,
		1, l.weight.Value().Data(), n, n*n, g, 1, n, 1, dx, 1, n, 1); err != nil {
		return fmt.Errorf("ResidualBlock.Backward: %w", err)
	}

	l.state = StateBackward
	return nil
}

// Update performs gradient descent on weight and bias,
// param -= learningRate * grad, then resets both gradient accumulators.
//
// Valid before any pass or after Backward.
func (l *ResidualBlock) Update(learningRate float32) error {
	if err := l.state.expect("ResidualBlock.Update", StateIdle, StateBackward); err != nil {
		return err
	}
	for _, p := range l.Parameters() {
		if err := p.Step(learningRate); err != nil {
			return fmt.Errorf("ResidualBlock.Update: %w", err)
		}
	}
	l.state = StateIdle
	return nil
}

// Output returns the layer output of the most recent Forward.
func (l *ResidualBlock) Output() ([]float32, error) {
	if !l.state.hasForward() {
		return nil, fmt.Errorf("%w: ResidualBlock.Output read in state %s", ErrPassOrder, l.state)
	}
	return l.output.Data(), nil
}

// InputGradient returns the input gradient of the most recent Backward.
func (l *ResidualBlock) InputGradient() ([]float32, error) {
	if l.state != StateBackward {
		return nil, fmt.Errorf("%w: ResidualBlock.InputGradient read in state %s", ErrPassOrder, l.state)
	}
	return l.inputGrad.Data(), nil
}

// Parameters returns [weight, bias].
func (l *ResidualBlock) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *ResidualBlock) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *ResidualBlock) Bias() *Parameter {
	return l.bias
}

// Size returns the input and output width of the block.
func (l *ResidualBlock) Size() int {
	return l.size
}

// State returns the current pass state.
func (l *ResidualBlock) State() PassState {
	return l.state
}

// StateDict returns copies of the parameters keyed by name.
func (l *ResidualBlock) StateDict() map[string][]float32 {
	stateDict := make(map[string][]float32)
	for _, p := range l.Parameters() {
		stateDict[p.Name()] = p.Value().Clone()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
//
// Both "weight" and "bias" must be present with the block's shapes; nothing
// is written unless every entry is valid.
func (l *ResidualBlock) LoadStateDict(stateDict map[string][]float32) error {
	params := l.Parameters()
	for _, p := range params {
		values, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if len(values) != p.Value().Len() {
			return fmt.Errorf("%w: %s has %d values, expected %v",
				ErrShapeMismatch, p.Name(), len(values), p.Value().Shape())
		}
	}

	for _, p := range params {
		if err := p.Load(stateDict[p.Name()]); err != nil {
			return err
		}
	}
	return nil
}
