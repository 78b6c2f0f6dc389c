package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tdm "github.com/tphakala/go-tdm-out"
)

func TestParseVariant(t *testing.T) {
	voices, m, err := parseVariant("mono", 8, 1000, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []tdm.Voice{{Amplitude: 0.25, Frequency: 1000}}, voices)
	assert.Equal(t, tdm.Mono(8), m)

	voices, m, err = parseVariant("quad", 8, 0, 0)
	require.NoError(t, err)
	require.Len(t, voices, 4)
	assert.InDelta(t, 880.0, voices[3].Frequency, 0)
	assert.Equal(t, tdm.ChannelMap{0, 1, 2, 3, 0, 1, 2, 3}, m)

	// A narrow frame only needs as many voices as it has slots.
	voices, m, err = parseVariant("quad", 2, 0, 0)
	require.NoError(t, err)
	assert.Len(t, voices, 2)
	assert.Equal(t, 2, m.Generators())

	_, _, err = parseVariant("stereo", 8, 0, 0)
	assert.Error(t, err)
}

func TestLayerConfigs(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "system.toml")
	second := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(first, []byte("bit_depth = 24\nchannels = 4\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("channels = 6\n"), 0o600))

	cfg, loaded, err := layerConfigs(tdm.DefaultConfig(), []string{
		first,
		filepath.Join(dir, "missing.toml"),
		second,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, loaded)
	assert.Equal(t, 24, cfg.BitDepth)
	assert.Equal(t, 6, cfg.Channels)
}

func TestLayerConfigsValidatesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("frames_per_half = 0\n"), 0o600))

	_, _, err := layerConfigs(tdm.DefaultConfig(), []string{path})
	assert.ErrorIs(t, err, tdm.ErrInvalidConfig)
}

func TestLoadConfigExplicit(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err, "an explicit config path must exist")
}

func TestCheckModes(t *testing.T) {
	assert.NoError(t, checkModes(false, "out.wav", true))
	assert.NoError(t, checkModes(true, "", false))

	err := checkModes(true, "out.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-out")

	err = checkModes(true, "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-analyze")
}
