// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/resblock/internal/nn"
	"github.com/born-ml/resblock/tensor"
)

// Network is an ordered stack of residual blocks of uniform width.
type Network = nn.Network

// ResidualBlock is a residual linear + ReLU layer: y = x + ReLU(W @ x + b).
type ResidualBlock = nn.ResidualBlock

// Parameter is a trainable buffer with its gradient accumulator.
type Parameter = nn.Parameter

// Config describes the shape of a Network.
type Config = nn.Config

// PassState tracks where a layer or network is within a training pass.
type PassState = nn.PassState

// LayerSnapshot is a copy of every buffer of a residual block.
type LayerSnapshot = nn.LayerSnapshot

// NetworkSnapshot is a copy of the network boundary buffers and every layer.
type NetworkSnapshot = nn.NetworkSnapshot

// Pass states.
const (
	StateIdle           = nn.StateIdle
	StateForwardZeroed  = nn.StateForwardZeroed
	StateForward        = nn.StateForward
	StateBackwardZeroed = nn.StateBackwardZeroed
	StateBackward       = nn.StateBackward
)

// Errors.
var (
	ErrPassOrder     = nn.ErrPassOrder
	ErrInvalidConfig = nn.ErrInvalidConfig
	ErrShapeMismatch = nn.ErrShapeMismatch
)

// NewNetwork builds a network of cfg.Layers identity-initialized blocks.
func NewNetwork(cfg Config) (*Network, error) {
	return nn.NewNetwork(cfg)
}

// NewResidualBlock creates a residual block of the given width.
func NewResidualBlock(size int) (*ResidualBlock, error) {
	return nn.NewResidualBlock(size)
}

// DefaultConfig returns a two-layer network of width 8.
func DefaultConfig() Config {
	return nn.DefaultConfig()
}

// Identity fills a square buffer with the identity matrix.
func Identity(b *tensor.Buffer) {
	nn.Identity(b)
}

// Zeros clears b.
func Zeros(b *tensor.Buffer) {
	nn.Zeros(b)
}
