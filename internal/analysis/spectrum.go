// Package analysis inspects transmitted audio, mainly to confirm which tone
// each channel carries.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tphakala/go-tdm-out/internal/pcm"
	"github.com/tphakala/go-tdm-out/internal/simdops"
)

// minSpectrumSamples is the shortest input with a meaningful peak.
const minSpectrumSamples = 8

// ErrTooShort indicates too few samples for spectral analysis.
var ErrTooShort = errors.New("analysis: not enough samples")

// Channel extracts channel ch from interleaved left-justified words as
// normalized samples.
func Channel(words []int32, channels, ch, bitDepth int) []float64 {
	if channels < 1 || ch < 0 || ch >= channels {
		return nil
	}
	out := make([]float64, 0, len(words)/channels)
	for i := ch; i < len(words); i += channels {
		out = append(out, pcm.WordToFloat(words[i], bitDepth))
	}
	return out
}

// PeakFrequency returns the frequency of the strongest spectral component of
// samples, refined between bins by parabolic interpolation. DC is removed
// and a Hann window applied first. samples is not modified.
func PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	n := len(samples)
	if n < minSpectrumSamples {
		return 0, fmt.Errorf("%w: %d", ErrTooShort, n)
	}

	seq := make([]float64, n)
	mean := simdops.Mean(samples)
	for i, v := range samples {
		seq[i] = v - mean
	}
	window.Hann(seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	peak, peakMag := 0, 0.0
	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mags[k] = cmplx.Abs(c)
		if k > 0 && mags[k] > peakMag {
			peak, peakMag = k, mags[k]
		}
	}
	if peak == 0 {
		return 0, nil // silence
	}

	offset := 0.0
	if peak+1 < len(mags) {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(peak) + offset) * sampleRate / float64(n), nil
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sq := make([]float64, len(samples))
	for i, v := range samples {
		sq[i] = v * v
	}
	return math.Sqrt(simdops.Mean(sq))
}
