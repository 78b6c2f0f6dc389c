package wavetable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-tdm-out/internal/testutil"
)

func TestNewTable_GuardPointDuplicatesFirst(t *testing.T) {
	table, err := NewTable(8, func(p float64) float64 { return p + 1 })
	require.NoError(t, err)

	assert.Equal(t, 8, table.Size())
	assert.Equal(t, table.At(0), table.At(8))
	assert.InDelta(t, 1.5, table.At(4), testutil.DefaultTolerance)
}

func TestNewTable_Invalid(t *testing.T) {
	_, err := NewTable(1, math.Sin)
	require.Error(t, err)

	_, err = NewTable(16, nil)
	require.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	table, err := NewTable(4, func(p float64) float64 { return p * 4 }) // 0,1,2,3 then guard 0
	require.NoError(t, err)

	tests := []struct {
		name  string
		index float64
		want  float64
	}{
		{"on point", 2, 2},
		{"midpoint", 1.5, 1.5},
		{"toward guard", 3.5, 1.5},
		{"wraps above size", 5.25, 1.25},
		{"negative wraps", -0.5, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, table.Interpolate(tt.index), testutil.DefaultTolerance)
		})
	}
}

func TestWrap(t *testing.T) {
	inputs := []float64{0, 0.5, 0.999999, 1, 1.25, 7.75, -0.25, -3.5, -1e-18, 1e9 + 0.5}
	for _, v := range inputs {
		got := Wrap(v, 1)
		testutil.AssertInHalfOpen(t, got, 0, 1, "Wrap(%v)", v)
	}
	assert.InDelta(t, 0.25, Wrap(1.25, 1), testutil.DefaultTolerance)
	assert.InDelta(t, 0.75, Wrap(-0.25, 1), testutil.DefaultTolerance)
}

func TestWrap_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Zero(t, Wrap(v, 1), "Wrap(%v, 1)", v)
	}
	for _, limit := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.Zero(t, Wrap(2.5, limit), "Wrap(2.5, %v)", limit)
	}
}

func TestInterpolate_LargeAndNonFiniteIndex(t *testing.T) {
	table := Sine()
	size := float64(table.Size())

	// A quarter cycle past many whole cycles reads the peak.
	for _, cycles := range []float64{1, 1e6, 1e12} {
		got := table.Interpolate(cycles*size + size/4)
		assert.InDelta(t, 1.0, got, 1e-3, "%v cycles", cycles)
	}

	for _, index := range []float64{1e30, math.MaxFloat64, math.NaN(), math.Inf(1), math.Inf(-1)} {
		require.NotPanics(t, func() { table.Interpolate(index) }, "index %v", index)
	}
}

func TestSineTableMatchesSine(t *testing.T) {
	table := Sine()
	require.Equal(t, DefaultTableSize, table.Size())

	for _, phase := range []float64{0, 0.1, 0.25, 0.6, 0.9} {
		want := math.Sin(2 * math.Pi * phase)
		got := table.Interpolate(phase * float64(table.Size()))
		assert.InDelta(t, want, got, 1e-4, "phase %v", phase)
	}
}
