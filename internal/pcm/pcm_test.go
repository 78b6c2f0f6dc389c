package pcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatToWord24Bit(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int32
	}{
		{"zero", 0, 0},
		{"full scale positive", 1, 8388607 << 8},
		{"full scale negative", -1, -8388607 << 8},
		{"clamped high", 1.5, 8388607 << 8},
		{"clamped low", -3, -8388607 << 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FloatToWord(tt.in, 24))
		})
	}
}

func TestFloatToWordLowBitsClear(t *testing.T) {
	for _, depth := range []int{16, 24} {
		for _, v := range []float64{-0.77, -0.1, 0.003, 0.5, 0.99} {
			w := FloatToWord(v, depth)
			mask := int32(1)<<(WordBits-depth) - 1
			assert.Zero(t, w&mask, "depth %d value %f leaves low bits set", depth, v)
		}
	}
}

func TestWordRoundTrip(t *testing.T) {
	for _, depth := range []int{MinBitDepth, 16, 24, MaxBitDepth} {
		for _, v := range []float64{-1, -0.5, 0, 0.25, 1} {
			got := WordToFloat(FloatToWord(v, depth), depth)
			assert.InDelta(t, v, got, 1/MaxValue(depth), "depth %d", depth)
		}
	}
}

func TestWordToIntSignExtends(t *testing.T) {
	assert.Equal(t, -1, WordToInt(FloatToWord(-1/MaxValue(24), 24), 24))
	assert.Equal(t, -8388607, WordToInt(-8388607<<8, 24))
}
