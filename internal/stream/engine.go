// Package stream implements the double-buffered transmit engine: a
// ping-pong buffer drained by an output port while the completion handler
// refills the half the port just finished with.
package stream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-tdm-out/internal/clock"
	"github.com/tphakala/go-tdm-out/internal/pcm"
)

// Options holds engine parameters that do not come from the clock plan.
type Options struct {
	// Frames is the number of frames per half.
	Frames int

	// Map assigns generators to channels. Nil means Mono.
	Map ChannelMap

	// Now, when set, times every fill; a fill longer than one half period
	// counts as an overrun.
	Now func() time.Time
}

// Stats are counters maintained by the completion handler.
type Stats struct {
	Signals  uint64        // completion signals received
	Fills    uint64        // halves refilled
	Overruns uint64        // detected deadline misses
	MaxFill  time.Duration // longest timed fill, zero unless Options.Now is set
}

// Engine owns the ping-pong buffer and refills it from a FillFunc.
//
// Only one goroutine, the port's transmit context, calls OnHalfConsumed.
// The port only ever drains the half it reports as active and the engine
// only writes the other one, so the buffer needs no lock.
type Engine struct {
	port Port
	log  zerolog.Logger

	mu    sync.Mutex // serializes Configure/Start/Stop
	state atomic.Int32

	words    []int32
	halves   [halfCount][]int32
	frames   int
	channels int
	bitDepth int
	mapping  ChannelMap
	fill     FillFunc
	values   []float64 // one per generator
	packed   []int32   // values converted to words

	halfPeriod time.Duration
	now        func() time.Time

	// Owned by the transmit context.
	lastActive Half
	inFill     atomic.Bool

	signals  atomic.Uint64
	fills    atomic.Uint64
	overruns atomic.Uint64
	maxFill  atomic.Int64
}

// NewEngine returns an unconfigured engine bound to port.
func NewEngine(port Port, log zerolog.Logger) *Engine {
	return &Engine{
		port: port,
		log:  log.With().Str("component", "stream").Logger(),
	}
}

// Configure allocates an aligned double buffer sized from the plan and opts.
func (e *Engine) Configure(plan clock.Plan, fill FillFunc, opts Options) error {
	if opts.Frames < 1 {
		return fmt.Errorf("%w: frames per half must be positive", ErrInvalidConfig)
	}
	return e.ConfigureWithBuffer(plan, fill, opts, alignedWords(halfCount*opts.Frames*plan.Request.Channels))
}

// ConfigureWithBuffer is Configure over caller-provided storage of exactly
// 2 * Frames * Channels words, which must be 8-byte aligned.
func (e *Engine) ConfigureWithBuffer(plan clock.Plan, fill FillFunc, opts Options, buf []int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if st := e.State(); st == Running {
		return fmt.Errorf("%w: cannot configure while %s", ErrInvalidState, st)
	}
	if fill == nil {
		return fmt.Errorf("%w: nil fill function", ErrInvalidConfig)
	}

	channels := plan.Request.Channels
	bitDepth := plan.Request.BitDepth
	if channels < 1 {
		return fmt.Errorf("%w: plan has %d channels", ErrInvalidConfig, channels)
	}
	if bitDepth < pcm.MinBitDepth || bitDepth > pcm.MaxBitDepth {
		return fmt.Errorf("%w: bit depth %d outside %d-%d", ErrInvalidConfig, bitDepth, pcm.MinBitDepth, pcm.MaxBitDepth)
	}
	if opts.Frames < 1 {
		return fmt.Errorf("%w: frames per half must be positive", ErrInvalidConfig)
	}
	if plan.AttainedRateHz <= 0 {
		return fmt.Errorf("%w: plan has no attained frame rate", ErrInvalidConfig)
	}

	mapping := opts.Map
	if mapping == nil {
		mapping = Mono(channels)
	}
	if err := mapping.Validate(channels); err != nil {
		return err
	}

	halfLen := opts.Frames * channels
	if len(buf) != halfCount*halfLen {
		return fmt.Errorf("%w: buffer holds %d words, need %d", ErrInvalidConfig, len(buf), halfCount*halfLen)
	}
	if uintptr(unsafe.Pointer(&buf[0]))%bufferAlign != 0 {
		return fmt.Errorf("%w: buffer at %p", ErrMisaligned, &buf[0])
	}

	halves := [halfCount][]int32{
		buf[:halfLen:halfLen],
		buf[halfLen:],
	}
	if err := e.port.Configure(plan, halves, e.OnHalfConsumed); err != nil {
		return fmt.Errorf("configure port: %w", err)
	}

	e.words = buf
	e.halves = halves
	e.frames = opts.Frames
	e.channels = channels
	e.bitDepth = bitDepth
	e.mapping = mapping
	e.fill = fill
	e.values = make([]float64, mapping.Generators())
	e.packed = make([]int32, mapping.Generators())
	e.halfPeriod = time.Duration(plan.HalfPeriodSeconds(opts.Frames) * float64(time.Second))
	e.now = opts.Now
	e.state.Store(int32(Configured))

	e.log.Debug().
		Int("frames", e.frames).
		Int("channels", e.channels).
		Int("generators", len(e.values)).
		Dur("half_period", e.halfPeriod).
		Msg("Double buffer configured")
	return nil
}

// Start fills both halves and starts the port on HalfA.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if st := e.State(); st != Configured {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, st)
	}

	// The port is idle, so both halves belong to us here.
	e.fillHalf(HalfA)
	e.fillHalf(HalfB)
	e.lastActive = HalfA

	e.state.Store(int32(Running))
	if err := e.port.Start(); err != nil {
		e.state.Store(int32(Configured))
		return fmt.Errorf("start port: %w", err)
	}

	e.log.Info().Dur("half_period", e.halfPeriod).Msg("Streaming started")
	return nil
}

// Stop halts the port. Buffer contents are left as they are; Start again
// refills and restarts from HalfA.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if st := e.State(); st != Running {
		return fmt.Errorf("%w: cannot stop while %s", ErrInvalidState, st)
	}
	// The port may still be draining until Stop succeeds, so the engine
	// stays Running and keeps to the other half until then.
	if err := e.port.Stop(); err != nil {
		return fmt.Errorf("stop port: %w", err)
	}
	e.state.Store(int32(Configured))

	e.log.Info().
		Uint64("fills", e.fills.Load()).
		Uint64("overruns", e.overruns.Load()).
		Msg("Streaming stopped")
	return nil
}

// OnHalfConsumed is the port completion handler. active is the half the
// port has started draining; the engine refills the other one, which the
// port has just finished with.
func (e *Engine) OnHalfConsumed(active Half) {
	e.signals.Add(1)
	if State(e.state.Load()) != Running || active > HalfB {
		return
	}
	if !e.inFill.CompareAndSwap(false, true) {
		// Signalled again before the previous fill returned.
		e.overruns.Add(1)
		return
	}
	defer e.inFill.Store(false)

	if active == e.lastActive {
		// A boundary went by without a signal; the port replayed a stale half.
		e.overruns.Add(1)
	}
	e.lastActive = active

	if e.now == nil {
		e.fillHalf(active.Other())
		e.fills.Add(1)
		return
	}

	start := e.now()
	e.fillHalf(active.Other())
	elapsed := e.now().Sub(start)
	e.fills.Add(1)

	if int64(elapsed) > e.maxFill.Load() {
		e.maxFill.Store(int64(elapsed))
	}
	if elapsed > e.halfPeriod {
		e.overruns.Add(1)
	}
}

// fillHalf calls fill once per frame and fans each frame out to all channels.
func (e *Engine) fillHalf(h Half) {
	dst := e.halves[h]
	for f := 0; f < e.frames; f++ {
		e.fill(e.values)
		for g, v := range e.values {
			e.packed[g] = pcm.FloatToWord(v, e.bitDepth)
		}
		frame := dst[f*e.channels : (f+1)*e.channels]
		for ch, g := range e.mapping {
			frame[ch] = e.packed[g]
		}
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns a snapshot of the handler counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Signals:  e.signals.Load(),
		Fills:    e.fills.Load(),
		Overruns: e.overruns.Load(),
		MaxFill:  time.Duration(e.maxFill.Load()),
	}
}

// HalfPeriod returns how long the port takes to drain one half.
func (e *Engine) HalfPeriod() time.Duration {
	return e.halfPeriod
}

// Halves returns the two buffer halves. Only the half the port is not
// draining may be written, and only from the transmit context.
func (e *Engine) Halves() [2][]int32 {
	return e.halves
}

// Frames returns the number of frames per half.
func (e *Engine) Frames() int {
	return e.frames
}

// alignedWords returns n int32 words backed by uint64 storage, which the Go
// allocator aligns to 8 bytes.
func alignedWords(n int) []int32 {
	if n < 1 {
		return nil
	}
	backing := make([]uint64, (n+wordsPerAlignUnit-1)/wordsPerAlignUnit)
	return unsafe.Slice((*int32)(unsafe.Pointer(&backing[0])), n)
}
