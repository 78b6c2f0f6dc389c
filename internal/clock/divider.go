// Package clock derives fractional clock dividers for the frame clock and bit
// clock of a serial audio port from a single reference oscillator.
package clock

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDividerRange indicates a target the divider cannot reach.
	ErrDividerRange = errors.New("clock divider out of range")

	// ErrInvalidFrequency indicates a non-positive or non-finite frequency.
	ErrInvalidFrequency = errors.New("invalid clock frequency")
)

// Divider is a clock divider with an integer part and an 8-bit fraction,
// dividing by Int + Frac/256.
type Divider struct {
	Int  uint16
	Frac uint8
}

// Value returns the effective division ratio.
func (d Divider) Value() float64 {
	return float64(d.Int) + float64(d.Frac)/fracSteps
}

// String formats the divider as "int+frac/256".
func (d Divider) String() string {
	return fmt.Sprintf("%d+%d/%d", d.Int, d.Frac, fracSteps)
}

// DeriveDivider finds the divider that brings referenceHz closest to, and not
// below, targetHz given 8 fractional bits, and returns the frequency the
// quantized divider actually produces.
func DeriveDivider(referenceHz, targetHz float64) (Divider, float64, error) {
	if !validFrequency(referenceHz) || !validFrequency(targetHz) {
		return Divider{}, 0, fmt.Errorf("%w: reference %g Hz, target %g Hz", ErrInvalidFrequency, referenceHz, targetHz)
	}

	ratio := referenceHz / targetHz
	scaled := ratio * fracSteps
	// A target computed from an attained frequency lands on a step up to
	// float rounding; snap it so the second planning pass is stable.
	if r := math.Round(scaled); math.Abs(scaled-r) <= quantEpsilon*r {
		scaled = r
	}
	steps := math.Floor(scaled)
	whole := math.Floor(steps / fracSteps)
	if whole < minDividerInt || whole > maxDividerInt {
		return Divider{}, 0, fmt.Errorf("%w: %g Hz / %g Hz = %g", ErrDividerRange, referenceHz, targetHz, ratio)
	}

	d := Divider{
		Int:  uint16(whole),
		Frac: uint8(steps - whole*fracSteps),
	}

	// Recompute from the quantized divider; this is what the hardware will run at.
	return d, referenceHz / d.Value(), nil
}

func validFrequency(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 0) && !math.IsNaN(hz)
}
