package tdm

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tphakala/go-tdm-out/internal/clock"
	"github.com/tphakala/go-tdm-out/internal/pcm"
	"github.com/tphakala/go-tdm-out/internal/stream"
)

// Common errors returned by the package.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = stream.ErrInvalidConfig

	// ErrMisaligned indicates transmit storage not aligned to 8 bytes.
	ErrMisaligned = stream.ErrMisaligned

	// ErrDividerRange indicates a clock that the reference cannot be divided down to.
	ErrDividerRange = clock.ErrDividerRange

	// ErrInvalidState indicates an operation not allowed in the current state.
	ErrInvalidState = stream.ErrInvalidState

	// ErrPortUnavailable indicates the output port could not claim its resources.
	ErrPortUnavailable = stream.ErrPortUnavailable
)

// Pins assigns the serializer signals to GPIOs.
type Pins struct {
	MasterClock int `toml:"master_clock"`
	DataOut     int `toml:"data_out"`
	DataIn      int `toml:"data_in"`
	ClockBase   int `toml:"clock_base"` // bit clock; frame sync on ClockBase+1
}

// Config is the peripheral configuration. It is validated once before the
// clock plan is computed and cannot change while streaming.
type Config struct {
	// FrameRateHz is the requested frame (sample) rate.
	FrameRateHz float64 `toml:"frame_rate_hz"`

	// BitClockMultiplier sets the master clock to FrameRateHz times this.
	BitClockMultiplier int `toml:"bit_clock_multiplier"`

	// BitDepth is the width of each channel slot, 8 to 32 bits.
	BitDepth int `toml:"bit_depth"`

	// Channels is the number of slots per frame.
	Channels int `toml:"channels"`

	// FramesPerHalf sets the half-buffer length. Larger values trade latency
	// for fill deadline slack.
	FramesPerHalf int `toml:"frames_per_half"`

	// ReferenceHz is the oscillator all clocks are divided from.
	ReferenceHz float64 `toml:"reference_hz"`

	FrameProgramCycles int `toml:"frame_program_cycles"`
	BitProgramCycles   int `toml:"bit_program_cycles"`

	Pins Pins `toml:"pins"`
}

// DefaultConfig returns the reference configuration: 48 kHz, 256x master
// clock, 32-bit slots, 8 channels.
func DefaultConfig() Config {
	return Config{
		FrameRateHz:        defaultFrameRateHz,
		BitClockMultiplier: defaultMultiplier,
		BitDepth:           defaultBitDepth,
		Channels:           defaultChannels,
		FramesPerHalf:      defaultFramesPerHalf,
		ReferenceHz:        defaultReferenceHz,
		FrameProgramCycles: defaultFrameProgramCycles,
		BitProgramCycles:   defaultBitProgramCycles,
		Pins: Pins{
			MasterClock: defaultMasterClockPin,
			DataOut:     defaultDataOutPin,
			DataIn:      defaultDataInPin,
			ClockBase:   defaultClockBasePin,
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg, err := LoadConfigOver(DefaultConfig(), path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigOver decodes a TOML file over base without validating, so that
// several files can be layered before the final Validate.
func LoadConfigOver(base Config, path string) (Config, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.FrameRateHz <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", ErrInvalidConfig)
	}

	if c.BitClockMultiplier < 1 {
		return fmt.Errorf("%w: bit clock multiplier must be at least 1", ErrInvalidConfig)
	}

	if c.BitDepth < pcm.MinBitDepth || c.BitDepth > pcm.MaxBitDepth {
		return fmt.Errorf("%w: bit depth must be %d-%d", ErrInvalidConfig, pcm.MinBitDepth, pcm.MaxBitDepth)
	}

	if c.Channels < 1 || c.Channels > maxChannels {
		return fmt.Errorf("%w: channels must be 1-%d", ErrInvalidConfig, maxChannels)
	}

	if c.FramesPerHalf < 1 || c.FramesPerHalf > maxFramesPerHalf {
		return fmt.Errorf("%w: frames per half must be 1-%d", ErrInvalidConfig, maxFramesPerHalf)
	}

	if c.ReferenceHz <= 0 {
		return fmt.Errorf("%w: reference clock must be positive", ErrInvalidConfig)
	}

	if c.FrameProgramCycles < 1 || c.FrameProgramCycles > maxProgramCycles ||
		c.BitProgramCycles < 1 || c.BitProgramCycles > maxProgramCycles {
		return fmt.Errorf("%w: program cycles must be 1-%d", ErrInvalidConfig, maxProgramCycles)
	}

	return c.Pins.Validate()
}

// Validate checks that every pin exists and no two signals share one.
func (p Pins) Validate() error {
	used := map[int]string{}
	assign := []struct {
		name string
		pin  int
	}{
		{"master_clock", p.MasterClock},
		{"data_out", p.DataOut},
		{"data_in", p.DataIn},
		{"clock_base", p.ClockBase},
		{"frame sync (clock_base+1)", p.ClockBase + 1},
	}

	var errs []error
	for _, a := range assign {
		if a.pin < 0 || a.pin > maxPin {
			errs = append(errs, fmt.Errorf("%w: pin %s=%d outside 0-%d", ErrInvalidConfig, a.name, a.pin, maxPin))
			continue
		}
		if other, ok := used[a.pin]; ok {
			errs = append(errs, fmt.Errorf("%w: pin %d assigned to both %s and %s", ErrInvalidConfig, a.pin, other, a.name))
			continue
		}
		used[a.pin] = a.name
	}
	return errors.Join(errs...)
}

// request converts the configuration into a clock plan request.
func (c *Config) request() clock.Request {
	return clock.Request{
		FrameRateHz: c.FrameRateHz,
		Multiplier:  c.BitClockMultiplier,
		BitDepth:    c.BitDepth,
		Channels:    c.Channels,
		FrameCycles: c.FrameProgramCycles,
		BitCycles:   c.BitProgramCycles,
	}
}

// Plan computes the clock plan for c without starting anything.
func (c *Config) Plan() (Plan, error) {
	if err := c.Validate(); err != nil {
		return Plan{}, err
	}
	return clock.NewPlan(c.ReferenceHz, c.request())
}
