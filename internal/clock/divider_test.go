package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceHz = 132_000_000.0

func TestDeriveDivider_Exact(t *testing.T) {
	d, attained, err := DeriveDivider(referenceHz, 24_576_000)
	require.NoError(t, err)

	assert.Equal(t, Divider{Int: 5, Frac: 95}, d)
	assert.Equal(t, 24_576_000.0, attained)
	assert.Equal(t, "5+95/256", d.String())
}

func TestDeriveDivider_WithinOneStep(t *testing.T) {
	for _, n := range []float64{1, 2, 3, 4, 5, 8} {
		for _, rate := range []float64{48000, 44100, 32000, 96000} {
			target := rate * 256 * n
			if referenceHz/target < 1 {
				continue
			}
			d, attained, err := DeriveDivider(referenceHz, target)
			require.NoError(t, err, "target %g", target)

			q := d.Value()
			assert.Equal(t, referenceHz/q, attained)

			// Truncating quantization: the quantized divider is at most the ideal
			// one, so attained >= target > the frequency one step coarser.
			lower := referenceHz / (q + 1.0/fracSteps)
			assert.GreaterOrEqual(t, attained, target*(1-1e-12), "target %g", target)
			assert.Greater(t, target, lower*(1-1e-12), "target %g", target)
			assert.LessOrEqual(t, attained-target, attained-lower, "target %g", target)
		}
	}
}

func TestDeriveDivider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		ref, want float64
		err       error
	}{
		{"target above reference", referenceHz, referenceHz * 2, ErrDividerRange},
		{"target far below reference", referenceHz, 1, ErrDividerRange},
		{"zero target", referenceHz, 0, ErrInvalidFrequency},
		{"negative reference", -1, 48000, ErrInvalidFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DeriveDivider(tt.ref, tt.want)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDeriveDivider_SnapsRoundingNoise(t *testing.T) {
	d, _, err := DeriveDivider(referenceHz, 24_576_000*(1+1e-15))
	require.NoError(t, err)
	assert.Equal(t, Divider{Int: 5, Frac: 95}, d)
}
