package clock

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Request describes the clocks a serial audio port needs.
type Request struct {
	FrameRateHz float64 // requested frames per second
	Multiplier  int     // frame clock = frame rate * Multiplier
	BitDepth    int     // bits per channel slot
	Channels    int     // slots per frame

	// Program cycles per clock period. The state machines generating each
	// clock run this many times faster than the clock itself.
	FrameCycles int
	BitCycles   int
}

// Plan is the result of clock planning. It is computed once and not modified.
type Plan struct {
	ReferenceHz float64
	Request     Request

	FrameDivider Divider
	BitDivider   Divider

	// State machine frequencies produced by the dividers.
	FrameProgramHz float64
	BitProgramHz   float64

	AttainedRateHz  float64 // realized frames per second
	AttainedFrameHz float64 // realized frame clock
	AttainedBitHz   float64 // realized bit clock
}

// NewPlan derives both dividers from referenceHz. The frame clock divider is
// found first; the bit clock is then computed from the frame rate that
// divider actually attains, so both clocks share one realized base rate.
func NewPlan(referenceHz float64, req Request) (Plan, error) {
	if err := req.validate(); err != nil {
		return Plan{}, err
	}

	mult := float64(req.Multiplier)
	frameCycles := float64(req.FrameCycles)
	bitCycles := float64(req.BitCycles)

	// First pass: what frame clock can the divider really give us?
	_, probeHz, err := DeriveDivider(referenceHz, req.FrameRateHz*mult*frameCycles)
	if err != nil {
		return Plan{}, fmt.Errorf("frame clock: %w", err)
	}
	rate := probeHz / mult / frameCycles

	// Second pass: both clocks as exact multiples of the attained rate.
	p := Plan{
		ReferenceHz:    referenceHz,
		Request:        req,
		AttainedRateHz: rate,
	}
	p.FrameDivider, p.FrameProgramHz, err = DeriveDivider(referenceHz, rate*mult*frameCycles)
	if err != nil {
		return Plan{}, fmt.Errorf("frame clock: %w", err)
	}
	bitHz := rate * float64(req.BitDepth) * float64(req.Channels)
	p.BitDivider, p.BitProgramHz, err = DeriveDivider(referenceHz, bitHz*bitCycles)
	if err != nil {
		return Plan{}, fmt.Errorf("bit clock: %w", err)
	}

	p.AttainedFrameHz = p.FrameProgramHz / frameCycles
	p.AttainedBitHz = p.BitProgramHz / bitCycles
	return p, nil
}

func (r Request) validate() error {
	switch {
	case !validFrequency(r.FrameRateHz):
		return fmt.Errorf("%w: frame rate %g Hz", ErrInvalidFrequency, r.FrameRateHz)
	case r.Multiplier < 1:
		return fmt.Errorf("%w: multiplier %d", ErrInvalidFrequency, r.Multiplier)
	case r.BitDepth < 1 || r.Channels < 1:
		return fmt.Errorf("%w: %d channels of %d bits", ErrInvalidFrequency, r.Channels, r.BitDepth)
	case r.FrameCycles < 1 || r.BitCycles < 1:
		return fmt.Errorf("%w: program cycles %d/%d", ErrInvalidFrequency, r.FrameCycles, r.BitCycles)
	}
	return nil
}

// Ratio returns bit clock / frame clock.
func (p Plan) Ratio() float64 {
	return p.AttainedBitHz / p.AttainedFrameHz
}

// ValidateSync reports whether one clock is a whole multiple of the other.
// A false result means the clocks will drift in phase; streaming still works.
func (p Plan) ValidateSync() bool {
	hi, lo := p.AttainedBitHz, p.AttainedFrameHz
	if lo > hi {
		hi, lo = lo, hi
	}
	if lo <= 0 {
		return false
	}
	_, frac := math.Modf(hi / lo)
	return frac < syncTolerance || 1-frac < syncTolerance
}

// HalfPeriodSeconds returns how long the port takes to play frames frames.
func (p Plan) HalfPeriodSeconds(frames int) float64 {
	return float64(frames) / p.AttainedRateHz
}

// Report logs the attained clocks and their ratio and returns ValidateSync.
// An unsynchronized plan is logged at warn level.
func (p Plan) Report(log zerolog.Logger) bool {
	log.Info().
		Float64("frame_hz", p.AttainedFrameHz).
		Float64("program_hz", p.FrameProgramHz).
		Stringer("divider", p.FrameDivider).
		Msg("Frame clock")
	log.Info().
		Float64("bit_hz", p.AttainedBitHz).
		Float64("program_hz", p.BitProgramHz).
		Stringer("divider", p.BitDivider).
		Msg("Bit clock")

	synced := p.ValidateSync()
	ev := log.Info()
	if !synced {
		ev = log.Warn()
	}
	ev.Float64("ratio", p.Ratio()).
		Float64("rate_hz", p.AttainedRateHz).
		Bool("synced", synced).
		Msg("Clock ratio")
	return synced
}
