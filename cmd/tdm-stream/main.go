// Command tdm-stream brings up the TDM transmit pipeline and streams
// wavetable tones for a fixed duration.
//
// Usage:
//
//	tdm-stream -duration 5s -out capture.wav        # simulated bus, capture to WAV
//	tdm-stream -variant quad -analyze               # four tones, report peaks per slot
//	tdm-stream -play -freq 440                      # listen to slots 0 and 1
//
// Without -config, tdm-stream reads /usr/local/etc/tdm-out.toml, then the
// user config file tdm-out/tdm.toml, then ./tdm.toml; later files override
// earlier ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	tdm "github.com/tphakala/go-tdm-out"
	"github.com/tphakala/go-tdm-out/internal/analysis"
	"github.com/tphakala/go-tdm-out/internal/capture"
	"github.com/tphakala/go-tdm-out/internal/port/otoport"
	"github.com/tphakala/go-tdm-out/internal/port/sim"
	"github.com/tphakala/go-tdm-out/internal/port/wavcap"
)

const (
	defaultDuration  = 2 * time.Second
	defaultFrequency = 440.0
	defaultAmplitude = 0.5

	// analysisFrames is how much of the stream tail -analyze inspects.
	analysisFrames = 8192
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML configuration file")
	duration := flag.Duration("duration", defaultDuration, "How long to stream")
	variant := flag.String("variant", "mono", "Tone set: mono or quad")
	freq := flag.Float64("freq", defaultFrequency, "Tone frequency in Hz (mono variant)")
	amp := flag.Float64("amp", defaultAmplitude, "Tone amplitude in [0, 1] (mono variant)")
	gain := flag.Float64("gain", 1.0, "Master gain applied to every tone")
	outPath := flag.String("out", "", "Capture the stream to this WAV file")
	play := flag.Bool("play", false, "Play slots 0 and 1 on the sound device instead of simulating the bus")
	analyze := flag.Bool("analyze", false, "Report the dominant frequency of every slot")
	monitor := flag.Bool("monitor", true, "Count fills that exceed the half-buffer period")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	if err := checkModes(*play, *outPath, *analyze); err != nil {
		return err
	}

	logger := newLogger(os.Stderr, *verbose)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg, sources, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	for _, src := range sources {
		logger.Debug().Str("path", src).Msg("Loaded config")
	}

	voices, mapping, err := parseVariant(*variant, cfg.Channels, *freq, *amp)
	if err != nil {
		return err
	}

	plan, err := cfg.Plan()
	if err != nil {
		return err
	}
	bank, err := tdm.NewSineBank(plan.AttainedRateHz, voices...)
	if err != nil {
		return err
	}
	bank.SetGain(*gain)

	opts := []tdm.Option{tdm.WithChannelMap(mapping)}
	if *monitor {
		opts = append(opts, tdm.WithDeadlineMonitor())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *duration)
	defer cancelTimeout()

	if *play {
		return runDevice(ctx, cfg, bank, opts, logger)
	}
	return runSimulated(ctx, cfg, bank, opts, simOptions{
		outPath: *outPath,
		analyze: *analyze,
	}, logger)
}

type simOptions struct {
	outPath string
	analyze bool
}

// runSimulated drains the buffer with the software serializer in real time.
func runSimulated(ctx context.Context, cfg tdm.Config, bank *tdm.Bank, opts []tdm.Option, so simOptions, logger zerolog.Logger) (err error) {
	var portOpts []sim.Option

	var tap *capture.Ring
	if so.analyze {
		tap = capture.NewRing(analysisFrames * cfg.Channels)
		portOpts = append(portOpts, sim.WithTap(tap))
	}

	var wav *wavcap.Writer
	if so.outPath != "" {
		plan, perr := cfg.Plan()
		if perr != nil {
			return perr
		}
		wav, err = wavcap.New(so.outPath, int(plan.AttainedRateHz+0.5), cfg.BitDepth, cfg.Channels)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := wav.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to finalize %s: %w", so.outPath, cerr)
			}
		}()
		portOpts = append(portOpts, sim.WithSink(wav))
	}

	port := sim.New(logger, portOpts...)
	defer port.Close()

	s, err := tdm.New(cfg, port, bank.Fill, logger, opts...)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}

	runErr := port.Run(ctx)
	if err := s.Stop(); err != nil && !errors.Is(err, tdm.ErrInvalidState) {
		return err
	}
	if runErr != nil {
		return runErr
	}

	reportStats(logger, s)
	if wav != nil {
		logger.Info().Str("path", so.outPath).Int("frames", wav.Frames()).Msg("Capture written")
	}
	if tap != nil {
		return reportPeaks(logger, tap.Snapshot(), cfg, s.Plan().AttainedRateHz)
	}
	return nil
}

// runDevice lets the sound card pull the stream until ctx is done.
func runDevice(ctx context.Context, cfg tdm.Config, bank *tdm.Bank, opts []tdm.Option, logger zerolog.Logger) error {
	port := otoport.New(logger)
	defer func() { _ = port.Close() }()

	s, err := tdm.New(cfg, port, bank.Fill, logger, opts...)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	if err := s.Stop(); err != nil {
		return err
	}
	reportStats(logger, s)
	return nil
}

func reportStats(logger zerolog.Logger, s *tdm.Streamer) {
	st := s.Stats()
	ev := logger.Info()
	if st.Overruns > 0 {
		ev = logger.Warn()
	}
	ev.Uint64("signals", st.Signals).
		Uint64("fills", st.Fills).
		Uint64("overruns", st.Overruns).
		Dur("max_fill", st.MaxFill).
		Dur("half_period", s.HalfPeriod()).
		Msg("Stream statistics")
}

func reportPeaks(logger zerolog.Logger, words []int32, cfg tdm.Config, rate float64) error {
	for ch := range cfg.Channels {
		samples := analysis.Channel(words, cfg.Channels, ch, cfg.BitDepth)
		peak, err := analysis.PeakFrequency(samples, rate)
		if err != nil {
			return fmt.Errorf("slot %d: %w", ch, err)
		}
		logger.Info().
			Int("slot", ch).
			Float64("peak_hz", peak).
			Float64("rms", analysis.RMS(samples)).
			Msg("Slot analysis")
	}
	return nil
}
