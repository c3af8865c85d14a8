// Package main provides the resblock CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/born-ml/resblock/nn"
	"github.com/born-ml/resblock/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	if len(args) == 0 {
		usage(w)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(w, "resblock %s\n", version)
		return nil
	case "inspect":
		return inspect(args[1:], w)
	default:
		usage(w)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "resblock - residual linear + ReLU training core")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  inspect    Run one forward and backward pass and dump every buffer")
}

func inspect(args []string, w io.Writer) error {
	defaults := nn.DefaultConfig()
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(w)
	layers := fs.Int("layers", defaults.Layers, "number of residual blocks")
	size := fs.Int("size", defaults.Size, "width of every block")
	params := fs.Bool("params", false, "also dump weights and biases")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net, err := nn.NewNetwork(nn.Config{Layers: *layers, Size: *size})
	if err != nil {
		return err
	}

	input, target := permutationExample(*size)
	if err := net.ForwardFrom(input); err != nil {
		return err
	}
	if err := net.BackwardFrom(target); err != nil {
		return err
	}

	fmt.Fprintf(w, "Network: %d layers, size %d\n\n", net.Len(), net.Size())
	if *params {
		fmt.Fprintln(w, "=== Parameters ===")
		if err := net.DumpParams(w); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "=== Forward ===")
	if err := net.DumpForward(w); err != nil {
		return err
	}
	fmt.Fprintln(w, "=== Backward ===")
	if err := net.DumpBackward(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "Loss: %.3f\n", net.Loss())

	inGrad, err := tensor.Vector(net.Size())
	if err != nil {
		return err
	}
	if err := inGrad.CopyFrom(net.InputGradientTensor()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Input gradient: finite=%t max|g|=%.3f\n", inGrad.IsFinite(), inGrad.MaxAbs())
	return nil
}

// permutationExample returns input [1..size] and a target that permutes it
// and adds the position.
func permutationExample(size int) (input, target []float32) {
	input = make([]float32, size)
	for i := range input {
		input[i] = float32(i + 1)
	}
	target = make([]float32, size)
	for i := range target {
		target[i] = input[(i*5+3)%size] + float32(i)
	}
	return input, target
}
