package nn

import (
	"bufio"
	"fmt"
	"io"

	"github.com/born-ml/resblock/internal/tensor"
)

// LayerSnapshot is a copy of every buffer of a residual block.
type LayerSnapshot struct {
	State              PassState
	Size               int
	Input              []float32
	Weight             []float32 // [Size*Size], row-major
	Bias               []float32
	Product            []float32
	Output             []float32
	OutputGradient     []float32
	ActivationGradient []float32
	WeightGradient     []float32 // [Size*Size], row-major
	BiasGradient       []float32
	InputGradient      []float32
}

// NetworkSnapshot is a copy of the network boundary buffers and every layer.
type NetworkSnapshot struct {
	State          PassState
	Loss           float32
	Input          []float32
	Output         []float32
	OutputGradient []float32
	InputGradient  []float32
	Layers         []LayerSnapshot
}

// Snapshot copies the block's buffers. It does not change any state.
func (l *ResidualBlock) Snapshot() LayerSnapshot {
	return LayerSnapshot{
		State:              l.state,
		Size:               l.size,
		Input:              l.input.Clone(),
		Weight:             l.weight.Value().Clone(),
		Bias:               l.bias.Value().Clone(),
		Product:            l.product.Clone(),
		Output:             l.output.Clone(),
		OutputGradient:     l.outputGrad.Clone(),
		ActivationGradient: l.activationGrad.Clone(),
		WeightGradient:     l.weight.Grad().Clone(),
		BiasGradient:       l.bias.Grad().Clone(),
		InputGradient:      l.inputGrad.Clone(),
	}
}

// Snapshot copies the network buffers and every layer.
func (n *Network) Snapshot() NetworkSnapshot {
	s := NetworkSnapshot{
		State:          n.state,
		Loss:           n.loss,
		Input:          n.input.Clone(),
		Output:         n.output.Clone(),
		OutputGradient: n.outputGrad.Clone(),
		InputGradient:  n.inputGrad.Clone(),
		Layers:         make([]LayerSnapshot, len(n.layers)),
	}
	for i, layer := range n.layers {
		s.Layers[i] = layer.Snapshot()
	}
	return s
}

// matrixDump is a labelled buffer rendered as rows×cols.
type matrixDump struct {
	label string
	buf   *tensor.Buffer
	rows  int
}

// DumpForward writes the forward buffers and parameters of the block.
func (l *ResidualBlock) DumpForward(w io.Writer) error {
	return dumpMatrices(w, []matrixDump{
		{"Input Tensor", l.input, 1},
		{"Weight Tensor", l.weight.Value(), l.size},
		{"Bias Tensor", l.bias.Value(), 1},
		{"Product Tensor", l.product, 1},
		{"Residual Sum Tensor", l.output, 1},
	})
}

// DumpBackward writes the gradient buffers of the block.
func (l *ResidualBlock) DumpBackward(w io.Writer) error {
	return dumpMatrices(w, []matrixDump{
		{"Residual Sum Gradient Tensor", l.outputGrad, 1},
		{"Product Gradient Tensor", l.activationGrad, 1},
		{"Weight Gradient Tensor", l.weight.Grad(), l.size},
		{"Bias Gradient Tensor", l.bias.Grad(), 1},
		{"Input Gradient Tensor", l.inputGrad, 1},
	})
}

// DumpParams writes the weight and bias of the block.
func (l *ResidualBlock) DumpParams(w io.Writer) error {
	return dumpMatrices(w, []matrixDump{
		{"Weight Tensor", l.weight.Value(), l.size},
		{"Bias Tensor", l.bias.Value(), 1},
	})
}

// DumpForward writes DumpForward of every layer, in order.
func (n *Network) DumpForward(w io.Writer) error {
	return n.dumpLayers(w, (*ResidualBlock).DumpForward)
}

// DumpBackward writes DumpBackward of every layer, in order.
func (n *Network) DumpBackward(w io.Writer) error {
	return n.dumpLayers(w, (*ResidualBlock).DumpBackward)
}

// DumpParams writes DumpParams of every layer, in order.
func (n *Network) DumpParams(w io.Writer) error {
	return n.dumpLayers(w, (*ResidualBlock).DumpParams)
}

func (n *Network) dumpLayers(w io.Writer, dump func(*ResidualBlock, io.Writer) error) error {
	for i, layer := range n.layers {
		if _, err := fmt.Fprintf(w, "Layer %d\n", i); err != nil {
			return err
		}
		if err := dump(layer, w); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

func dumpMatrices(w io.Writer, dumps []matrixDump) error {
	bw := bufio.NewWriter(w)
	for _, d := range dumps {
		writeMatrix(bw, d.label, d.buf.Data(), d.rows, d.buf.Len()/d.rows)
	}
	bw.WriteString("\n")
	return bw.Flush()
}

// writeMatrix renders data as rows×cols with three decimals per cell.
func writeMatrix(w *bufio.Writer, label string, data []float32, rows, cols int) {
	fmt.Fprintf(w, "%s:\n", label)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			fmt.Fprintf(w, "%8.3f ", data[i*cols+j])
		}
		w.WriteString("\n")
	}
	w.WriteString("\n")
}
