package tdm_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tdm "github.com/tphakala/go-tdm-out"
	"github.com/tphakala/go-tdm-out/internal/analysis"
	"github.com/tphakala/go-tdm-out/internal/capture"
	"github.com/tphakala/go-tdm-out/internal/port/sim"
)

const analysisFrames = 4096

func TestStreamerTone(t *testing.T) {
	cfg := tdm.DefaultConfig()
	tap := capture.NewRing(analysisFrames * cfg.Channels)
	port := sim.New(zerolog.Nop(), sim.WithTap(tap))

	bank, err := tdm.NewSineBank(cfg.FrameRateHz, tdm.Voice{Amplitude: 0.5, Frequency: 1000})
	require.NoError(t, err)

	s, err := tdm.New(cfg, port, bank.Fill, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, s.Synced())
	assert.Equal(t, tdm.Configured, s.State())

	require.NoError(t, s.Start())
	assert.Equal(t, tdm.Running, s.State())

	for range analysisFrames / cfg.FramesPerHalf {
		require.NoError(t, port.Step())
	}
	require.NoError(t, s.Stop())

	words := tap.Snapshot()
	require.Len(t, words, analysisFrames*cfg.Channels)

	for ch := range cfg.Channels {
		samples := analysis.Channel(words, cfg.Channels, ch, cfg.BitDepth)
		peak, err := analysis.PeakFrequency(samples, s.Plan().AttainedRateHz)
		require.NoError(t, err)
		assert.InDelta(t, 1000.0, peak, 5, "channel %d", ch)
		assert.InDelta(t, 0.5/1.4142, analysis.RMS(samples), 0.01, "channel %d", ch)
	}

	st := s.Stats()
	assert.Equal(t, uint64(analysisFrames/cfg.FramesPerHalf), st.Fills)
	assert.Zero(t, st.Overruns)
}

func TestStreamerQuadMapping(t *testing.T) {
	cfg := tdm.DefaultConfig()
	tap := capture.NewRing(analysisFrames * cfg.Channels)
	port := sim.New(zerolog.Nop(), sim.WithTap(tap))

	freqs := []float64{500, 1000, 1500, 2000}
	voices := make([]tdm.Voice, len(freqs))
	for i, f := range freqs {
		voices[i] = tdm.Voice{Amplitude: 0.25, Frequency: f}
	}
	bank, err := tdm.NewSineBank(cfg.FrameRateHz, voices...)
	require.NoError(t, err)

	s, err := tdm.New(cfg, port, bank.Fill, zerolog.Nop(), tdm.WithChannelMap(tdm.Quad(cfg.Channels)))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	for range analysisFrames / cfg.FramesPerHalf {
		require.NoError(t, port.Step())
	}

	words := tap.Snapshot()
	for k, f := range freqs {
		lo := analysis.Channel(words, cfg.Channels, k, cfg.BitDepth)
		hi := analysis.Channel(words, cfg.Channels, k+4, cfg.BitDepth)
		assert.Equal(t, lo, hi, "slots %d and %d", k, k+4)

		peak, err := analysis.PeakFrequency(lo, s.Plan().AttainedRateHz)
		require.NoError(t, err)
		assert.InDelta(t, f, peak, 5, "slot %d", k)
	}
}

func TestStreamerDegradedSyncStillStarts(t *testing.T) {
	var logs bytes.Buffer
	cfg := tdm.DefaultConfig()
	cfg.BitDepth = 24

	port := sim.New(zerolog.Nop())
	s, err := tdm.New(cfg, port, func(v []float64) { v[0] = 0 }, zerolog.New(&logs))
	require.NoError(t, err)
	assert.False(t, s.Synced())
	require.NoError(t, s.Start())
	require.NoError(t, port.Step())

	var warned bool
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(line, &ev))
		if ev["message"] == "Clock ratio" {
			assert.Equal(t, "warn", ev["level"])
			warned = true
		}
	}
	assert.True(t, warned, "expected a clock ratio warning")
}

func TestStreamerFatalConfig(t *testing.T) {
	silence := func(v []float64) { clear(v) }

	t.Run("nil port", func(t *testing.T) {
		_, err := tdm.New(tdm.DefaultConfig(), nil, silence, zerolog.Nop())
		assert.ErrorIs(t, err, tdm.ErrInvalidConfig)
	})

	t.Run("nil fill", func(t *testing.T) {
		_, err := tdm.New(tdm.DefaultConfig(), sim.New(zerolog.Nop()), nil, zerolog.Nop())
		assert.ErrorIs(t, err, tdm.ErrInvalidConfig)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := tdm.DefaultConfig()
		cfg.Channels = 0
		_, err := tdm.New(cfg, sim.New(zerolog.Nop()), silence, zerolog.Nop())
		assert.ErrorIs(t, err, tdm.ErrInvalidConfig)
	})

	t.Run("divider range", func(t *testing.T) {
		cfg := tdm.DefaultConfig()
		cfg.ReferenceHz = 1e6
		_, err := tdm.New(cfg, sim.New(zerolog.Nop()), silence, zerolog.Nop())
		assert.ErrorIs(t, err, tdm.ErrDividerRange)
	})

	t.Run("misaligned buffer", func(t *testing.T) {
		cfg := tdm.DefaultConfig()
		n := 2 * cfg.FramesPerHalf * cfg.Channels
		backing := make([]uint64, n/2+1)
		words := unsafeWords(backing)
		_, err := tdm.New(cfg, sim.New(zerolog.Nop()), silence, zerolog.Nop(), tdm.WithBuffer(words[1:n+1]))
		assert.ErrorIs(t, err, tdm.ErrMisaligned)
	})

	t.Run("port unavailable", func(t *testing.T) {
		pool := sim.NewChannels(1)
		_, err := tdm.New(tdm.DefaultConfig(), sim.New(zerolog.Nop(), sim.WithChannels(pool)), silence, zerolog.Nop())
		assert.ErrorIs(t, err, tdm.ErrPortUnavailable)
	})

	t.Run("bad channel map", func(t *testing.T) {
		_, err := tdm.New(tdm.DefaultConfig(), sim.New(zerolog.Nop()), silence, zerolog.Nop(),
			tdm.WithChannelMap(tdm.Quad(4)))
		assert.ErrorIs(t, err, tdm.ErrInvalidConfig)
	})
}

func TestStreamerWithBuffer(t *testing.T) {
	cfg := tdm.DefaultConfig()
	n := 2 * cfg.FramesPerHalf * cfg.Channels
	words := unsafeWords(make([]uint64, n/2))

	port := sim.New(zerolog.Nop())
	s, err := tdm.New(cfg, port, func(v []float64) { v[0] = 0.25 }, zerolog.Nop(), tdm.WithBuffer(words))
	require.NoError(t, err)
	require.NoError(t, s.Start())

	// Start prefills both halves in the caller's storage.
	for _, w := range words {
		assert.NotZero(t, w)
	}
}

func TestStreamerRestart(t *testing.T) {
	port := sim.New(zerolog.Nop())
	s, err := tdm.New(tdm.DefaultConfig(), port, func(v []float64) { clear(v) }, zerolog.Nop(),
		tdm.WithDeadlineMonitor())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Stop(), tdm.ErrInvalidState)
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), tdm.ErrInvalidState)
	require.NoError(t, port.Step())
	require.NoError(t, s.Stop())

	require.NoError(t, s.Start())
	assert.Equal(t, tdm.HalfA, port.Active())
	require.NoError(t, port.Step())
	assert.Equal(t, uint64(2), s.Stats().Fills)
	assert.Positive(t, s.HalfPeriod())
}
