package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaultPlan(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))

	s := out.String()
	assert.Contains(t, s, "divider 5+95/256")
	assert.Contains(t, s, "Attained frame rate:  48000.000000 Hz")
	assert.Contains(t, s, "SYNCED")
}

func TestRunOverrides(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-depth", "24"}, &out))
	assert.Contains(t, out.String(), "DRIFTING")
}

func TestRunSweep(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-sweep"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// header, blank line, column titles, then one row per format
	assert.Len(t, lines, 3+len(sweepRates)*len(sweepDepths))
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-reference", "1000"}, &out))
	assert.Error(t, run([]string{"-config", "/nonexistent/tdm.toml"}, &out))
	assert.Error(t, run([]string{"-bogus"}, &out))
}
