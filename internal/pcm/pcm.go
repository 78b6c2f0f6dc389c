// Package pcm packs audio samples into the left-justified words a serial
// audio bus shifts out MSB first.
package pcm

import "math"

const (
	// WordBits is the width of one slot in the transmit buffer.
	WordBits = 32

	// MinBitDepth and MaxBitDepth bound the sample widths a 32-bit slot can hold.
	MinBitDepth = 8
	MaxBitDepth = 32
)

// MaxValue returns the largest positive sample value at the given bit depth.
func MaxValue(bitDepth int) float64 {
	return float64(int64(1)<<(bitDepth-1) - 1)
}

// FloatToWord converts a sample in [-1, 1] to a signed integer of bitDepth
// bits, left-justified in a 32-bit word. Out-of-range input is clamped.
func FloatToWord(v float64, bitDepth int) int32 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	s := int64(math.Round(v * MaxValue(bitDepth)))
	return int32(s << (WordBits - bitDepth))
}

// WordToInt recovers the signed bitDepth-bit sample from a left-justified word.
func WordToInt(w int32, bitDepth int) int {
	return int(w >> (WordBits - bitDepth))
}

// WordToFloat recovers the normalized sample from a left-justified word.
func WordToFloat(w int32, bitDepth int) float64 {
	return float64(WordToInt(w, bitDepth)) / MaxValue(bitDepth)
}
