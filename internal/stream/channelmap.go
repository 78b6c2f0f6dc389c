package stream

import "fmt"

// ChannelMap assigns a generator to each output channel: channel ch carries
// the sample of generator m[ch]. Fan-out is a policy and can be replaced.
type ChannelMap []int

// Mono sends generator 0 to every channel.
func Mono(channels int) ChannelMap {
	return Spread(channels, 1)
}

// Quad sends generator k to channels k, k+4, k+8, ...
func Quad(channels int) ChannelMap {
	return Spread(channels, 4)
}

// Spread assigns channel ch to generator ch % generators.
func Spread(channels, generators int) ChannelMap {
	if generators < 1 {
		generators = 1
	}
	m := make(ChannelMap, channels)
	for ch := range m {
		m[ch] = ch % generators
	}
	return m
}

// Generators returns how many source values one frame needs.
func (m ChannelMap) Generators() int {
	n := 0
	for _, g := range m {
		if g+1 > n {
			n = g + 1
		}
	}
	return n
}

// Validate checks the map against the frame width.
func (m ChannelMap) Validate(channels int) error {
	if len(m) != channels {
		return fmt.Errorf("%w: channel map covers %d channels, frame has %d", ErrInvalidConfig, len(m), channels)
	}
	for ch, g := range m {
		if g < 0 || g >= maxGenerators {
			return fmt.Errorf("%w: channel %d maps to generator %d", ErrInvalidConfig, ch, g)
		}
	}
	return nil
}
