package nn

import "fmt"

// PassState tracks where a layer or network is within a training pass.
type PassState int

// Pass states, in the order a pass moves through them.
const (
	StateIdle PassState = iota
	StateForwardZeroed
	StateForward
	StateBackwardZeroed
	StateBackward
)

// String returns a human-readable state name.
func (s PassState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateForwardZeroed:
		return "forward-zeroed"
	case StateForward:
		return "forward"
	case StateBackwardZeroed:
		return "backward-zeroed"
	case StateBackward:
		return "backward"
	default:
		return fmt.Sprintf("PassState(%d)", int(s))
	}
}

// hasForward reports whether forward scratch reflects a completed Forward.
func (s PassState) hasForward() bool {
	return s == StateForward || s == StateBackwardZeroed || s == StateBackward
}

// expect returns ErrPassOrder unless s is one of allowed.
func (s PassState) expect(op string, allowed ...PassState) error {
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s called in state %s (want %v)", ErrPassOrder, op, s, allowed)
}
