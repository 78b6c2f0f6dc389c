package wavetable

// Lookup table constants
const (
	// DefaultTableSize is the number of distinct points in one cycle.
	// The stored table holds one extra guard point.
	DefaultTableSize = 1024

	// guardPoints is the number of wrap-around points appended to a table
	// so interpolation never has to wrap the successor index.
	guardPoints = 1

	// minTableSize keeps interpolation meaningful.
	minTableSize = 2
)

// Phase is normalized to one cycle.
const phaseCycle = 1.0

// unityGain leaves bank output untouched.
const unityGain = 1.0
