package tdm

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-tdm-out/internal/stream"
)

// Option configures a Streamer.
type Option func(*options)

type options struct {
	mapping ChannelMap
	now     func() time.Time
	buf     []int32
}

// WithChannelMap sets the generator to slot fan-out. The default is Mono.
func WithChannelMap(m ChannelMap) Option {
	return func(o *options) { o.mapping = m }
}

// WithDeadlineMonitor times every fill against the half period and counts
// fills that overrun it.
func WithDeadlineMonitor() Option {
	return func(o *options) { o.now = time.Now }
}

// WithBuffer streams from caller-provided storage instead of allocating.
// buf must hold 2 * FramesPerHalf * Channels words and be 8-byte aligned.
func WithBuffer(buf []int32) Option {
	return func(o *options) { o.buf = buf }
}

// Streamer brings up one transmit pipeline: clock plan, double buffer and
// output port.
type Streamer struct {
	cfg    Config
	plan   Plan
	synced bool
	engine *stream.Engine
	log    zerolog.Logger
}

// New validates cfg, plans the clocks, reports them and configures port
// with a freshly filled double buffer. Any error aborts bring-up before
// the port has been started. A plan whose clocks are not integer related
// is logged as a warning and does not fail.
func New(cfg Config, port Port, fill FillFunc, log zerolog.Logger, opts ...Option) (*Streamer, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: port is nil", ErrInvalidConfig)
	}
	if fill == nil {
		return nil, fmt.Errorf("%w: fill function is nil", ErrInvalidConfig)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	plan, err := cfg.Plan()
	if err != nil {
		return nil, err
	}

	engine := stream.NewEngine(port, log)

	log = log.With().Str("component", "tdm").Logger()
	synced := plan.Report(log)

	engOpts := stream.Options{
		Frames: cfg.FramesPerHalf,
		Map:    o.mapping,
		Now:    o.now,
	}
	if o.buf != nil {
		err = engine.ConfigureWithBuffer(plan, fill, engOpts, o.buf)
	} else {
		err = engine.Configure(plan, fill, engOpts)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Float64("frame_rate_hz", plan.AttainedRateHz).
		Int("bit_depth", cfg.BitDepth).
		Int("channels", cfg.Channels).
		Int("frames_per_half", cfg.FramesPerHalf).
		Bool("synced", synced).
		Msg("Streamer configured")

	return &Streamer{
		cfg:    cfg,
		plan:   plan,
		synced: synced,
		engine: engine,
		log:    log,
	}, nil
}

// Start fills both halves and starts the port from HalfA.
func (s *Streamer) Start() error {
	return s.engine.Start()
}

// Stop halts the port. Start may be called again.
func (s *Streamer) Stop() error {
	return s.engine.Stop()
}

// Plan returns the clock plan computed at construction.
func (s *Streamer) Plan() Plan {
	return s.plan
}

// Synced reports whether the bit clock is an integer multiple of the frame clock.
func (s *Streamer) Synced() bool {
	return s.synced
}

// Config returns the configuration the streamer was built from.
func (s *Streamer) Config() Config {
	return s.cfg
}

// Stats returns a snapshot of the completion handler counters.
func (s *Streamer) Stats() Stats {
	return s.engine.Stats()
}

// State returns the lifecycle state.
func (s *Streamer) State() State {
	return s.engine.State()
}

// HalfPeriod returns the time the port takes to drain one half, which is
// the deadline for each fill.
func (s *Streamer) HalfPeriod() time.Duration {
	return s.engine.HalfPeriod()
}

// OnHalfConsumed is the completion handler the port was configured with.
// Ports call it themselves; it is exported for ports driven from outside.
func (s *Streamer) OnHalfConsumed(active Half) {
	s.engine.OnHalfConsumed(active)
}
