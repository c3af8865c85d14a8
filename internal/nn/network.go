package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/resblock/internal/backend/cpu"
	"github.com/born-ml/resblock/internal/tensor"
)

// Network is an ordered stack of residual blocks of uniform width.
//
// The network owns four boundary buffers the caller reads and writes
// directly: the input, the output, the output gradient and the input
// gradient. Each block's output is copied into the next block's input on
// the way forward, and each block's input gradient into the previous
// block's output gradient on the way back.
//
// Example:
//
//	net, _ := nn.NewNetwork(nn.DefaultConfig())
//	for step := range batch {
//	    copy(net.InputTensor(), features[step])
//	    _ = net.Forward()
//	    copy(net.OutputGradientTensor(), targets[step])
//	    _ = net.Backward() // output gradient becomes prediction - target
//	}
//	_ = net.Update(lr)
type Network struct {
	layers []*ResidualBlock
	size   int
	state  PassState
	loss   float32

	input      *tensor.Buffer
	output     *tensor.Buffer
	outputGrad *tensor.Buffer
	inputGrad  *tensor.Buffer
}

// NewNetwork builds a network of cfg.Layers identity-initialized blocks.
func NewNetwork(cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network{
		layers: make([]*ResidualBlock, cfg.Layers),
		size:   cfg.Size,
	}
	for i := range n.layers {
		layer, err := NewResidualBlock(cfg.Size)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		n.layers[i] = layer
	}

	var err error
	for _, b := range []**tensor.Buffer{&n.input, &n.output, &n.outputGrad, &n.inputGrad} {
		if *b, err = tensor.Vector(cfg.Size); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// InputTensor returns the input buffer read by Forward.
func (n *Network) InputTensor() []float32 {
	return n.input.Data()
}

// OutputTensor returns the buffer holding the last Forward's prediction.
func (n *Network) OutputTensor() []float32 {
	return n.output.Data()
}

// OutputGradientTensor returns the buffer Backward reads the target from.
// After Backward it holds the loss gradient, prediction - target.
func (n *Network) OutputGradientTensor() []float32 {
	return n.outputGrad.Data()
}

// InputGradientTensor returns the gradient of the loss with respect to the
// network input, written by Backward.
func (n *Network) InputGradientTensor() []float32 {
	return n.inputGrad.Data()
}

// Forward runs every block in order on the input buffer and copies the
// last block's output into the output buffer.
func (n *Network) Forward() error {
	n.state = StateForwardZeroed
	for _, layer := range n.layers {
		layer.ZeroForward()
	}

	activation := n.input.Data()
	for i, layer := range n.layers {
		if err := layer.Forward(activation); err != nil {
			return fmt.Errorf("network forward: layer %d: %w", i, err)
		}
		out, err := layer.Output()
		if err != nil {
			return fmt.Errorf("network forward: layer %d: %w", i, err)
		}
		activation = out
	}

	if err := n.output.CopyFrom(activation); err != nil {
		return fmt.Errorf("network forward: %w", err)
	}
	n.state = StateForward
	return nil
}

// ForwardFrom copies input into the input buffer and runs Forward.
func (n *Network) ForwardFrom(input []float32) error {
	if err := n.input.CopyFrom(input); err != nil {
		return fmt.Errorf("network forward: input: %w", err)
	}
	return n.Forward()
}

// Backward treats the output gradient buffer as the target of the last
// Forward, converts it in place to the loss gradient prediction - target,
// records the loss 0.5*||prediction - target||² and propagates the
// gradient back through every block. The first block's input gradient is
// copied into the input gradient buffer.
//
// Backward must follow Forward exactly once; a second call would convert
// the target twice and returns ErrPassOrder.
func (n *Network) Backward() error {
	if err := n.state.expect("Network.Backward", StateForward); err != nil {
		return err
	}
	// Every layer must still hold its forward pass before the target is
	// overwritten.
	for i, layer := range n.layers {
		if err := layer.state.expect(fmt.Sprintf("Network.Backward: layer %d", i), StateForward); err != nil {
			return err
		}
	}

	grad := n.outputGrad.Data()
	if err := cpu.Scal(n.size, -1, grad, 1); err != nil {
		return fmt.Errorf("network backward: %w", err)
	}
	if err := cpu.Axpy(n.size, 1, n.output.Data(), 1, grad, 1); err != nil {
		return fmt.Errorf("network backward: %w", err)
	}
	norm, err := cpu.Nrm2(n.size, grad, 1)
	if err != nil {
		return fmt.Errorf("network backward: %w", err)
	}
	n.loss = 0.5 * norm * norm
	n.state = StateBackwardZeroed

	for i, layer := range n.layers {
		if err := layer.ZeroBackward(); err != nil {
			return fmt.Errorf("network backward: layer %d: %w", i, err)
		}
	}

	for i := len(n.layers) - 1; i >= 0; i-- {
		layer := n.layers[i]
		if err := layer.Backward(grad); err != nil {
			return fmt.Errorf("network backward: layer %d: %w", i, err)
		}
		if grad, err = layer.InputGradient(); err != nil {
			return fmt.Errorf("network backward: layer %d: %w", i, err)
		}
	}

	if err := n.inputGrad.CopyFrom(grad); err != nil {
		return fmt.Errorf("network backward: %w", err)
	}
	n.state = StateBackward
	return nil
}

// BackwardFrom copies target into the output gradient buffer and runs Backward.
func (n *Network) BackwardFrom(target []float32) error {
	if err := n.state.expect("Network.Backward", StateForward); err != nil {
		return err
	}
	if err := n.outputGrad.CopyFrom(target); err != nil {
		return fmt.Errorf("network backward: target: %w", err)
	}
	return n.Backward()
}

// Update applies gradient descent with learningRate to every block and
// resets all gradient accumulators.
func (n *Network) Update(learningRate float32) error {
	if err := n.state.expect("Network.Update", StateIdle, StateBackward); err != nil {
		return err
	}
	for i, layer := range n.layers {
		if err := layer.Update(learningRate); err != nil {
			return fmt.Errorf("network update: layer %d: %w", i, err)
		}
	}
	n.state = StateIdle
	return nil
}

// Loss returns 0.5*||prediction - target||² from the most recent Backward.
func (n *Network) Loss() float32 {
	return n.loss
}

// State returns the current pass state of the network.
func (n *Network) State() PassState {
	return n.state
}

// Size returns the width of every block.
func (n *Network) Size() int {
	return n.size
}

// Len returns the number of blocks.
func (n *Network) Len() int {
	return len(n.layers)
}

// Layer returns the block at the given index.
//
// Panics if index is out of bounds.
func (n *Network) Layer(index int) *ResidualBlock {
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// Parameters returns the parameters of every block, in layer order.
func (n *Network) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// StateDict returns copies of all parameters.
//
// Keys are prefixed with the block index (e.g., "0.weight", "1.bias").
func (n *Network) StateDict() map[string][]float32 {
	stateDict := make(map[string][]float32)
	for i, layer := range n.layers {
		for name, values := range layer.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = values
		}
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary keyed like StateDict.
func (n *Network) LoadStateDict(stateDict map[string][]float32) error {
	for i, layer := range n.layers {
		layerStateDict := make(map[string][]float32)
		prefix := fmt.Sprintf("%d.", i)

		for key, values := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				layerStateDict[name] = values
			}
		}

		if err := layer.LoadStateDict(layerStateDict); err != nil {
			return fmt.Errorf("failed to load layer %d: %w", i, err)
		}
	}
	return nil
}
