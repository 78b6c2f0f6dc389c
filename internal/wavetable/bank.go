package wavetable

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-tdm-out/internal/simdops"
)

// Voice describes one oscillator of a Bank.
type Voice struct {
	Amplitude float64
	Frequency float64
}

// Bank owns a fixed set of oscillators and produces one value per oscillator
// per frame. Fill does not allocate and can run on the transmit callback.
type Bank struct {
	oscs []Oscillator
	gain float64
	ops  *simdops.Ops[float64]
}

// NewBank creates one oscillator per voice, all reading table at sampleRate.
func NewBank(table *Table, sampleRate float64, voices ...Voice) (*Bank, error) {
	if table == nil {
		return nil, errors.New("wavetable: nil table")
	}
	if len(voices) == 0 {
		return nil, errors.New("wavetable: bank needs at least one voice")
	}
	if !validRate(sampleRate) {
		return nil, errors.New("wavetable: sample rate must be positive and finite")
	}

	oscs := make([]Oscillator, len(voices))
	for i, v := range voices {
		if !finite(v.Frequency) || !finite(v.Amplitude) {
			return nil, fmt.Errorf("wavetable: voice %d: frequency and amplitude must be finite", i)
		}
		oscs[i] = NewOscillator(table, sampleRate, v.Amplitude, v.Frequency)
	}
	return &Bank{oscs: oscs, gain: unityGain, ops: simdops.Float64Ops()}, nil
}

// Voices returns the number of oscillators.
func (b *Bank) Voices() int {
	return len(b.oscs)
}

// Oscillator returns oscillator i for inspection or retuning.
func (b *Bank) Oscillator(i int) *Oscillator {
	return &b.oscs[i]
}

// SetGain sets the master gain applied after every oscillator.
func (b *Bank) SetGain(g float64) {
	b.gain = g
}

// Fill advances every oscillator once and writes the samples to values.
// values must hold at least Voices() entries; extra entries are untouched.
func (b *Bank) Fill(values []float64) {
	values = values[:len(b.oscs)]
	for i := range b.oscs {
		values[i] = b.oscs[i].Advance()
	}
	if b.gain != unityGain {
		b.ops.Scale(values, values, b.gain)
	}
}
