// Package sim provides a software serializer that drains the ping-pong
// buffer the way the transmit DMA chain does: one half at a time, switching
// halves on its own and signalling once per boundary.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-tdm-out/internal/capture"
	"github.com/tphakala/go-tdm-out/internal/clock"
	"github.com/tphakala/go-tdm-out/internal/stream"
)

// Sink receives every half the port drains, in transmit order.
type Sink interface {
	Write(words []int32) error
}

// Option configures a Port.
type Option func(*Port)

// WithSink forwards drained words to s.
func WithSink(s Sink) Option {
	return func(p *Port) { p.sink = s }
}

// WithTap copies drained words into r.
func WithTap(r *capture.Ring) Option {
	return func(p *Port) { p.tap = r }
}

// WithChannels draws the port's transfer channels from pool.
func WithChannels(pool *Channels) Option {
	return func(p *Port) { p.pool = pool }
}

// Port is a simulated serial audio transmitter. Drive it with Step for
// deterministic tests or Run for real-time pacing.
type Port struct {
	log  zerolog.Logger
	sink Sink
	tap  *capture.Ring
	pool *Channels

	mu      sync.Mutex
	halves  [2][]int32
	handler stream.Handler
	active  stream.Half
	running bool
	period  time.Duration
	claimed []int
	drained uint64
}

// New creates an unconfigured simulated port.
func New(log zerolog.Logger, opts ...Option) *Port {
	p := &Port{log: log.With().Str("component", "sim_port").Logger()}
	for _, opt := range opts {
		opt(p)
	}
	if p.pool == nil {
		p.pool = NewChannels(defaultChannels)
	}
	return p
}

// Configure claims a control and a data transfer channel and records the halves.
func (p *Port) Configure(plan clock.Plan, halves [2][]int32, onConsumed stream.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("%w: port is running", stream.ErrInvalidState)
	}
	if p.claimed == nil {
		claimed, err := p.pool.Claim(channelsPerPort)
		if err != nil {
			return err
		}
		p.claimed = claimed
	}

	p.halves = halves
	p.handler = onConsumed
	p.period = time.Duration(plan.HalfPeriodSeconds(len(halves[stream.HalfA])/plan.Request.Channels) * float64(time.Second))
	p.log.Debug().Ints("channels", p.claimed).Dur("half_period", p.period).Msg("Port configured")
	return nil
}

// Start begins transfer from HalfA.
func (p *Port) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handler == nil {
		return fmt.Errorf("%w: port not configured", stream.ErrInvalidState)
	}
	p.active = stream.HalfA
	p.running = true
	return nil
}

// Stop halts transfer.
func (p *Port) Stop() error {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// Close releases the port's transfer channels.
func (p *Port) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = false
	if p.claimed != nil {
		p.pool.Release(p.claimed)
		p.claimed = nil
	}
}

// Step drains the active half, switches to the other half and signals the
// boundary. It is the transmit context: the handler runs on the caller's
// goroutine before Step returns.
func (p *Port) Step() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return fmt.Errorf("%w: port not running", stream.ErrInvalidState)
	}

	words := p.halves[p.active]
	if p.tap != nil {
		p.tap.Write(words)
	}
	var err error
	if p.sink != nil {
		err = p.sink.Write(words)
	}
	p.drained++

	p.active = p.active.Other()
	p.handler(p.active)

	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}

// Run steps the port once per half period until ctx is done, the port is
// stopped, or the sink fails.
func (p *Port) Run(ctx context.Context) error {
	p.mu.Lock()
	period := p.period
	p.mu.Unlock()
	if period <= 0 {
		return fmt.Errorf("%w: port not configured", stream.ErrInvalidState)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.Running() {
				return nil
			}
			if err := p.Step(); err != nil {
				return err
			}
		}
	}
}

// Running reports whether the port is transferring.
func (p *Port) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Active returns the half currently being drained.
func (p *Port) Active() stream.Half {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Drained returns the number of halves transmitted so far.
func (p *Port) Drained() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drained
}
