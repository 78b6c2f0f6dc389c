package clock

// Fractional divider resolution
const (
	fracBits  = 8
	fracSteps = 1 << fracBits // 256
)

// Divider integer range accepted by the state machine clock divider.
const (
	minDividerInt = 1
	maxDividerInt = 65535
)

// quantEpsilon is the relative distance from a divider step treated as
// float rounding rather than a real offset.
const quantEpsilon = 1e-12

// syncTolerance absorbs float64 rounding when testing the clock ratio for a
// whole number. Dividers with 8 fractional bits make exact plans exact in
// float64, so anything beyond this is a real fractional ratio.
const syncTolerance = 1e-9
