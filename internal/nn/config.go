package nn

import "fmt"

// Config describes a stack of residual blocks.
type Config struct {
	Layers int // Number of residual blocks (must be >= 1)
	Size   int // Width of every block (must be >= 1)
}

// DefaultConfig returns the reference network: two blocks of width 8.
func DefaultConfig() Config {
	return Config{
		Layers: 2,
		Size:   8,
	}
}

// Validate checks that the configuration describes a non-empty network.
func (c Config) Validate() error {
	if c.Layers < 1 {
		return fmt.Errorf("%w: layers = %d, need at least 1", ErrInvalidConfig, c.Layers)
	}
	if c.Size < 1 {
		return fmt.Errorf("%w: size = %d, need at least 1", ErrInvalidConfig, c.Size)
	}
	return nil
}
