package tdm

import (
	"github.com/tphakala/go-tdm-out/internal/clock"
	"github.com/tphakala/go-tdm-out/internal/stream"
	"github.com/tphakala/go-tdm-out/internal/wavetable"
)

type (
	// Plan is a computed clock plan.
	Plan = clock.Plan

	// Divider is an integer plus 8-bit fractional clock divider.
	Divider = clock.Divider

	// Port is an output peripheral that drains the ping-pong buffer.
	Port = stream.Port

	// Handler is the completion handler a Port calls at each half boundary.
	Handler = stream.Handler

	// Half identifies one half of the ping-pong buffer.
	Half = stream.Half

	// State is the streamer lifecycle state.
	State = stream.State

	// FillFunc writes one value per generator for the next frame.
	FillFunc = stream.FillFunc

	// ChannelMap assigns a generator to each slot of a frame.
	ChannelMap = stream.ChannelMap

	// Stats are the completion handler counters.
	Stats = stream.Stats

	// Voice is one oscillator of a Bank.
	Voice = wavetable.Voice

	// Bank is a set of wavetable oscillators usable as a FillFunc.
	Bank = wavetable.Bank
)

// Buffer halves and lifecycle states.
const (
	HalfA = stream.HalfA
	HalfB = stream.HalfB

	Uninitialized = stream.Uninitialized
	Configured    = stream.Configured
	Running       = stream.Running
)

// Mono sends generator 0 to every slot.
func Mono(channels int) ChannelMap {
	return stream.Mono(channels)
}

// Quad sends generator k to slots k and k+4.
func Quad(channels int) ChannelMap {
	return stream.Quad(channels)
}

// NewSineBank creates one sine oscillator per voice at sampleRate.
func NewSineBank(sampleRate float64, voices ...Voice) (*Bank, error) {
	return wavetable.NewBank(wavetable.Sine(), sampleRate, voices...)
}
