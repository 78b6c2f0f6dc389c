// Package wavetable implements lookup-table oscillators that produce one
// sample per call by linear interpolation over a single stored cycle.
package wavetable

import (
	"fmt"
	"math"
)

// Table is an immutable single-cycle lookup table. The point at index
// Size() duplicates index 0 so the successor of the last point needs no wrap.
// A Table is safe for concurrent reads.
type Table struct {
	points []float64
	size   int
}

// NewTable samples shape at size evenly spaced phases in [0, 1) and appends
// the guard point.
func NewTable(size int, shape func(phase float64) float64) (*Table, error) {
	if size < minTableSize {
		return nil, fmt.Errorf("table size must be at least %d, got %d", minTableSize, size)
	}
	if shape == nil {
		return nil, fmt.Errorf("table shape function is nil")
	}

	points := make([]float64, size+guardPoints)
	for i := range size {
		points[i] = shape(float64(i) / float64(size))
	}
	points[size] = points[0]

	return &Table{points: points, size: size}, nil
}

// NewSineTable returns a table holding one cycle of a unit sine.
func NewSineTable(size int) (*Table, error) {
	return NewTable(size, func(phase float64) float64 {
		return math.Sin(2 * math.Pi * phase)
	})
}

var defaultSine = mustSine(DefaultTableSize)

func mustSine(size int) *Table {
	t, err := NewSineTable(size)
	if err != nil {
		panic(err)
	}
	return t
}

// Sine returns the shared process-wide sine table of DefaultTableSize points.
func Sine() *Table {
	return defaultSine
}

// Size returns the number of distinct points in the cycle, excluding the guard.
func (t *Table) Size() int {
	return t.size
}

// At returns the stored point i, 0 <= i <= Size().
func (t *Table) At(i int) float64 {
	return t.points[i]
}

// Interpolate returns the linearly interpolated value at a fractional index.
// Indices outside [0, Size()) wrap back into the cycle; a non-finite index
// reads index 0.
func (t *Table) Interpolate(index float64) float64 {
	if index < 0 || index >= float64(t.size) || math.IsNaN(index) {
		index = Wrap(index, float64(t.size))
	}
	trunc := int(index)
	frac := index - float64(trunc)

	a := t.points[trunc]
	return a + (t.points[trunc+1]-a)*frac
}

// Wrap folds value into [0, limit). Non-finite values, and any value when
// limit is not a positive finite number, fold to 0.
func Wrap(value, limit float64) float64 {
	if value >= 0 && value < limit {
		return value
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || !(limit > 0) || math.IsInf(limit, 1) {
		return 0
	}
	value = math.Mod(value, limit)
	if value < 0 {
		value += limit
	}
	// -tiny + limit can round up to limit
	if value >= limit {
		value = 0
	}
	return value
}
