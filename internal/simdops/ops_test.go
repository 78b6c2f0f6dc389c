package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleFloat64(t *testing.T) {
	a := []float64{1, -0.5, 0.25, 0}
	dst := make([]float64, len(a))
	For[float64]().Scale(dst, a, 0.5)
	assert.InDeltaSlice(t, []float64{0.5, -0.25, 0.125, 0}, dst, 1e-12)
}

func TestInterleave2Float32(t *testing.T) {
	left := []float32{1, 2, 3}
	right := []float32{-1, -2, -3}
	dst := make([]float32, 6)
	Float32Ops().Interleave2(dst, left, right)
	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3}, dst)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, Mean([]float32{}))
}

func TestForReturnsSharedInstance(t *testing.T) {
	assert.Same(t, Float64Ops(), For[float64]())
	assert.Same(t, Float32Ops(), For[float32]())
}

// BenchmarkScaleFrame measures gain scaling at the width of one quad frame.
func BenchmarkScaleFrame(b *testing.B) {
	ops := For[float64]()
	v := []float64{0.1, 0.2, 0.3, 0.4}

	b.ReportAllocs()
	for b.Loop() {
		ops.Scale(v, v, 0.999)
	}
}
