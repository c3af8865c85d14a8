package nn

import (
	"fmt"

	"github.com/born-ml/resblock/internal/backend/cpu"
	"github.com/born-ml/resblock/internal/tensor"
)

// Parameter represents a trainable parameter of a layer.
//
// It pairs the value buffer with a gradient accumulator of the same shape.
// Backward passes add into the accumulator; only Step consumes and clears it.
//
// Example:
//
//	w := layer.Weight()
//	w.Value().At(0, 0) // current weight
//	w.Grad().At(0, 0)  // gradient summed since the last update
type Parameter struct {
	name  string         // Parameter name (e.g., "weight", "bias")
	value *tensor.Buffer // The parameter values
	grad  *tensor.Buffer // Gradient accumulator
}

// newParameter allocates a zeroed parameter and its accumulator.
func newParameter(name string, shape tensor.Shape) (*Parameter, error) {
	value, err := tensor.NewBuffer(shape)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	grad, err := tensor.NewBuffer(shape)
	if err != nil {
		return nil, fmt.Errorf("parameter %q gradient: %w", name, err)
	}
	return &Parameter{name: name, value: value, grad: grad}, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter buffer.
func (p *Parameter) Value() *tensor.Buffer {
	return p.value
}

// Grad returns the gradient accumulator.
func (p *Parameter) Grad() *tensor.Buffer {
	return p.grad
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}

// Step applies one gradient-descent update, value -= lr * grad, and clears
// the accumulator.
func (p *Parameter) Step(lr float32) error {
	n := p.value.Len()
	if err := cpu.Axpy(n, -lr, p.grad.Data(), 1, p.value.Data(), 1); err != nil {
		return fmt.Errorf("parameter %q: %w", p.name, err)
	}
	p.ZeroGrad()
	return nil
}

// Load overwrites the parameter values. The accumulator is untouched.
func (p *Parameter) Load(values []float32) error {
	if err := p.value.CopyFrom(values); err != nil {
		return fmt.Errorf("parameter %q: %w", p.name, err)
	}
	return nil
}
