package wavetable

import "math"

// Oscillator is a table-driven oscillator. It is a plain value owned by the
// code that advances it and is not safe for concurrent use.
type Oscillator struct {
	Amplitude float64
	Frequency float64 // Hz
	Phase     float64 // normalized, kept in [0, 1)
	Output    float64 // last sample produced

	table  *Table
	period float64 // seconds per sample
}

// NewOscillator returns an oscillator at phase 0 reading table at sampleRate.
// A sample rate that is not positive and finite leaves the phase frozen.
func NewOscillator(table *Table, sampleRate, amplitude, frequency float64) Oscillator {
	var period float64
	if validRate(sampleRate) {
		period = 1 / sampleRate
	}
	return Oscillator{
		Amplitude: amplitude,
		Frequency: frequency,
		table:     table,
		period:    period,
	}
}

// Advance produces the next sample and steps the phase by Frequency/sampleRate.
// Frequencies above Nyquist alias; that is not treated as an error. A
// non-finite step resets the phase to 0.
func (o *Oscillator) Advance() float64 {
	o.Phase = Wrap(o.Phase, phaseCycle)
	o.Output = o.Amplitude * o.table.Interpolate(o.Phase*float64(o.table.size))
	o.Phase = Wrap(o.Phase+o.Frequency*o.period, phaseCycle)
	return o.Output
}

// AdvanceBlock fills dst with consecutive samples.
func (o *Oscillator) AdvanceBlock(dst []float64) {
	for i := range dst {
		dst[i] = o.Advance()
	}
}

// SampleRate returns the rate the phase increment is computed for, or 0 when
// the oscillator was built without a usable rate.
func (o *Oscillator) SampleRate() float64 {
	if o.period == 0 {
		return 0
	}
	return 1 / o.period
}

func validRate(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
