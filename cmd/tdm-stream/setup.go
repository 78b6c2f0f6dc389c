package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	tdm "github.com/tphakala/go-tdm-out"
)

const (
	systemConfigPath = "/usr/local/etc/tdm-out.toml"
	userConfigName   = "tdm-out/tdm.toml"
	localConfigPath  = "./tdm.toml"

	quadVoices = 4
)

// quadTones is the four-oscillator program: 220 and 660 Hz at full scale,
// 440 and 880 Hz at half scale.
var quadTones = [quadVoices]tdm.Voice{
	{Amplitude: 1.0, Frequency: 220},
	{Amplitude: 0.5, Frequency: 440},
	{Amplitude: 1.0, Frequency: 660},
	{Amplitude: 0.5, Frequency: 880},
}

// newLogger writes human-readable lines to a terminal and JSON otherwise.
func newLogger(w *os.File, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = w
	if term.IsTerminal(int(w.Fd())) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// configCandidates lists config files in increasing priority.
func configCandidates() []string {
	paths := []string{systemConfigPath}
	if p, err := xdg.SearchConfigFile(userConfigName); err == nil {
		paths = append(paths, p)
	}
	return append(paths, localConfigPath)
}

// loadConfig reads explicit if set, otherwise layers every existing
// candidate file over the defaults. It returns the files it read.
func loadConfig(explicit string) (tdm.Config, []string, error) {
	if explicit != "" {
		cfg, err := tdm.LoadConfig(explicit)
		if err != nil {
			return tdm.Config{}, nil, err
		}
		return cfg, []string{explicit}, nil
	}
	return layerConfigs(tdm.DefaultConfig(), configCandidates())
}

func layerConfigs(cfg tdm.Config, paths []string) (tdm.Config, []string, error) {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return tdm.Config{}, nil, fmt.Errorf("failed to check config %s: %w", path, err)
		}
		next, err := tdm.LoadConfigOver(cfg, path)
		if err != nil {
			return tdm.Config{}, nil, err
		}
		cfg = next
		loaded = append(loaded, path)
	}
	if err := cfg.Validate(); err != nil {
		return tdm.Config{}, nil, err
	}
	return cfg, loaded, nil
}

// parseVariant returns the voices and slot mapping for a tone set.
func parseVariant(name string, channels int, freq, amp float64) ([]tdm.Voice, tdm.ChannelMap, error) {
	switch name {
	case "mono":
		return []tdm.Voice{{Amplitude: amp, Frequency: freq}}, tdm.Mono(channels), nil
	case "quad":
		m := tdm.Quad(channels)
		voices := quadTones
		return voices[:min(quadVoices, m.Generators())], m, nil
	default:
		return nil, nil, fmt.Errorf("unknown variant %q (want mono or quad)", name)
	}
}

// checkModes rejects flags that only apply to the simulated bus when the
// sound device drives the stream.
func checkModes(play bool, outPath string, analyze bool) error {
	if !play {
		return nil
	}
	if outPath != "" {
		return errors.New("-out captures the simulated bus and cannot be combined with -play")
	}
	if analyze {
		return errors.New("-analyze inspects the simulated bus and cannot be combined with -play")
	}
	return nil
}
