package stream

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-tdm-out/internal/clock"
)

// Common errors returned by the engine and its ports.
var (
	// ErrInvalidConfig indicates invalid engine parameters.
	ErrInvalidConfig = errors.New("invalid stream configuration")

	// ErrInvalidState indicates an operation not allowed in the current state.
	ErrInvalidState = errors.New("invalid stream state")

	// ErrMisaligned indicates transmit storage not aligned to 8 bytes.
	ErrMisaligned = errors.New("transmit buffer not 8-byte aligned")

	// ErrPortUnavailable indicates the output port could not claim the
	// resources it needs.
	ErrPortUnavailable = errors.New("output port unavailable")
)

// Half identifies one half of the ping-pong buffer.
type Half uint8

const (
	// HalfA is the first half; transfer always begins here.
	HalfA Half = iota
	// HalfB is the second half.
	HalfB
)

// Other returns the opposite half.
func (h Half) Other() Half {
	return h ^ 1
}

func (h Half) String() string {
	switch h {
	case HalfA:
		return "A"
	case HalfB:
		return "B"
	default:
		return fmt.Sprintf("Half(%d)", uint8(h))
	}
}

// State is the engine lifecycle state.
type State int32

const (
	// Uninitialized is the state before a successful Configure.
	Uninitialized State = iota
	// Configured means the buffer is allocated and the port is set up.
	Configured
	// Running means the port is draining the buffer.
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Configured:
		return "configured"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Handler is invoked by a port each time it finishes draining a half and
// moves on; active is the half it is now draining. Handlers run on the
// port's transmit context and must not block.
type Handler func(active Half)

// Port is an output peripheral that drains the ping-pong buffer at the
// planned frame rate. After Start it drains HalfA, then alternates halves on
// its own, calling the handler exactly once per half boundary.
type Port interface {
	// Configure claims the port's resources and records the buffer halves
	// and completion handler. It must not start transfer.
	Configure(plan clock.Plan, halves [2][]int32, onConsumed Handler) error

	// Start begins continuous transfer from HalfA.
	Start() error

	// Stop halts transfer. The half being drained is left as is.
	Stop() error
}

// FillFunc produces one frame worth of source samples per call, writing
// one value per generator into values. It runs inside the port's completion
// handler: it must not block, allocate or wait.
type FillFunc func(values []float64)
