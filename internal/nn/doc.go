// Package nn implements the residual training core: a residual linear +
// ReLU layer with hand-written forward and backward passes, and a network
// that chains those layers.
//
// There is no autodiff tape. Each ResidualBlock keeps exactly the buffers
// its backward pass needs, and Network moves activations forward and
// gradients backward by copying between neighbouring blocks.
//
// Sign conventions are fixed: the loss gradient injected at the output is
// prediction - target, and Update always performs gradient descent.
package nn
