// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the residual training core.
//
// # Overview
//
// A Network is a stack of ResidualBlock layers of one width. Each block
// computes y = x + ReLU(W @ x + b) with W starting as the identity and b as
// zeros, and carries hand-written forward and backward passes.
//
// # Basic Usage
//
//	net, err := nn.NewNetwork(nn.Config{Layers: 2, Size: 8})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, ex := range examples {
//	    _ = net.ForwardFrom(ex.Input)
//	    _ = net.BackwardFrom(ex.Target)
//	}
//	_ = net.Update(0.01)
//
// # Pass Order
//
// Every block moves through ZeroForward, Forward, ZeroBackward, Backward and
// finally Update. Calls out of that order return ErrPassOrder and leave the
// buffers untouched.
package nn
