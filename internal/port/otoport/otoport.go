// Package otoport plays two channels of the transmit stream on the host's
// sound device. The device pulls samples through Read and the port crosses
// half boundaries as it goes, so the audio callback paces the engine the
// same way a serializer's transfer-complete interrupt would.
package otoport

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-tdm-out/internal/clock"
	"github.com/tphakala/go-tdm-out/internal/pcm"
	"github.com/tphakala/go-tdm-out/internal/simdops"
	"github.com/tphakala/go-tdm-out/internal/stream"
)

const (
	outputChannels = 2
	bytesPerSample = 4 // float32
	bytesPerFrame  = outputChannels * bytesPerSample
)

// player is the part of the audio backend the port drives.
type player interface {
	Play()
	Pause()
	Close() error
}

// opener creates a player that pulls from src at sampleRate.
type opener func(sampleRate int, src io.Reader) (player, error)

// Option configures a Port.
type Option func(*Port)

// WithChannels selects which slots are played on the left and right outputs.
func WithChannels(left, right int) Option {
	return func(p *Port) {
		p.left = left
		p.right = right
	}
}

// Port is a stream.Port backed by the host audio device.
type Port struct {
	log  zerolog.Logger
	open opener

	left, right int

	mu       sync.Mutex
	out      player
	halves   [2][]int32
	handler  stream.Handler
	channels int
	bitDepth int
	active   stream.Half
	pos      int // next word offset in the active half
	running  bool

	// Read scratch, grown on demand.
	l, r, inter []float32
}

// New returns an unconfigured port playing slots 0 and 1.
func New(log zerolog.Logger, opts ...Option) *Port {
	p := &Port{
		log:   log.With().Str("component", "oto_port").Logger(),
		open:  openDevice,
		left:  0,
		right: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configure opens the audio device at the plan's attained frame rate.
func (p *Port) Configure(plan clock.Plan, halves [2][]int32, onConsumed stream.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("%w: port is running", stream.ErrInvalidState)
	}
	channels := plan.Request.Channels
	if p.left < 0 || p.left >= channels || p.right < 0 || p.right >= channels {
		return fmt.Errorf("%w: playback slots %d/%d outside %d-slot frame",
			stream.ErrInvalidConfig, p.left, p.right, channels)
	}

	if p.out == nil {
		rate := int(math.Round(plan.AttainedRateHz))
		out, err := p.open(rate, p)
		if err != nil {
			return fmt.Errorf("%w: %w", stream.ErrPortUnavailable, err)
		}
		p.out = out
		p.log.Debug().Int("sample_rate", rate).Msg("Audio device opened")
	}

	p.halves = halves
	p.handler = onConsumed
	p.channels = channels
	p.bitDepth = plan.Request.BitDepth
	return nil
}

// Start resumes playback from the beginning of HalfA. The player is driven
// without holding the port lock because some backends pull through Read
// from inside Play.
func (p *Port) Start() error {
	p.mu.Lock()
	out := p.out
	if out == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: port not configured", stream.ErrInvalidState)
	}
	p.active = stream.HalfA
	p.pos = 0
	p.running = true
	p.mu.Unlock()

	out.Play()
	return nil
}

// Stop pauses playback. The device keeps pulling silence until Start.
func (p *Port) Stop() error {
	p.mu.Lock()
	p.running = false
	out := p.out
	p.mu.Unlock()

	if out != nil {
		out.Pause()
	}
	return nil
}

// Close releases the audio device.
func (p *Port) Close() error {
	p.mu.Lock()
	p.running = false
	out := p.out
	p.out = nil
	p.mu.Unlock()

	if out == nil {
		return nil
	}
	return out.Close()
}

// Read implements io.Reader for the audio backend. It emits interleaved
// little-endian float32 stereo and signals the handler at each half boundary.
func (p *Port) Read(b []byte) (int, error) {
	frames := len(b) / bytesPerFrame
	n := frames * bytesPerFrame

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		clear(b[:n])
		return n, nil
	}

	p.grow(frames)
	l, r := p.l[:frames], p.r[:frames]
	for i := range frames {
		half := p.halves[p.active]
		frame := half[p.pos : p.pos+p.channels]
		l[i] = float32(pcm.WordToFloat(frame[p.left], p.bitDepth))
		r[i] = float32(pcm.WordToFloat(frame[p.right], p.bitDepth))

		p.pos += p.channels
		if p.pos == len(half) {
			p.pos = 0
			p.active = p.active.Other()
			p.handler(p.active)
		}
	}

	inter := p.inter[:frames*outputChannels]
	simdops.Float32Ops().Interleave2(inter, l, r)
	for i, v := range inter {
		binary.LittleEndian.PutUint32(b[i*bytesPerSample:], math.Float32bits(v))
	}
	return n, nil
}

func (p *Port) grow(frames int) {
	if len(p.l) >= frames {
		return
	}
	p.l = make([]float32, frames)
	p.r = make([]float32, frames)
	p.inter = make([]float32, frames*outputChannels)
}
