package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelMaps(t *testing.T) {
	assert.Equal(t, ChannelMap{0, 0, 0, 0, 0, 0, 0, 0}, Mono(8))
	assert.Equal(t, ChannelMap{0, 1, 2, 3, 0, 1, 2, 3}, Quad(8))
	assert.Equal(t, ChannelMap{0, 1, 0, 1}, Spread(4, 2))
	assert.Equal(t, ChannelMap{0, 0}, Spread(2, 0))

	assert.Equal(t, 1, Mono(8).Generators())
	assert.Equal(t, 4, Quad(8).Generators())
	assert.Equal(t, 3, ChannelMap{2, 0}.Generators())
}

func TestChannelMap_Validate(t *testing.T) {
	require.NoError(t, Quad(8).Validate(8))
	require.ErrorIs(t, Quad(8).Validate(6), ErrInvalidConfig)
	require.ErrorIs(t, ChannelMap{0, maxGenerators}.Validate(2), ErrInvalidConfig)
}
