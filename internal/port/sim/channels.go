package sim

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-tdm-out/internal/stream"
)

const (
	// defaultChannels matches the transfer channel count of a small MCU.
	defaultChannels = 12

	// channelsPerPort is one control channel that reloads the read address
	// plus one data channel that feeds the serializer.
	channelsPerPort = 2
)

// Channels is a pool of claimable transfer channels shared by ports.
type Channels struct {
	mu    sync.Mutex
	inUse []bool
}

// NewChannels creates a pool of n channels.
func NewChannels(n int) *Channels {
	return &Channels{inUse: make([]bool, n)}
}

// Claim reserves n unused channels or none at all.
func (c *Channels) Claim(n int) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var got []int
	for i, used := range c.inUse {
		if len(got) == n {
			break
		}
		if !used {
			got = append(got, i)
		}
	}
	if len(got) < n {
		return nil, fmt.Errorf("%w: need %d transfer channels, %d free", stream.ErrPortUnavailable, n, len(got))
	}
	for _, i := range got {
		c.inUse[i] = true
	}
	return got, nil
}

// Release returns channels to the pool.
func (c *Channels) Release(ids []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, i := range ids {
		if i >= 0 && i < len(c.inUse) {
			c.inUse[i] = false
		}
	}
}

// Free returns the number of unclaimed channels.
func (c *Channels) Free() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, used := range c.inUse {
		if !used {
			n++
		}
	}
	return n
}
