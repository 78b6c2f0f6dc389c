//go:build !headless

package otoport

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process.
var (
	otoCtx  *oto.Context
	ctxRate int
	once    sync.Once
	ctxErr  error
)

func initContext(sampleRate int) (*oto.Context, error) {
	once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatFloat32LE,
		}

		var ready chan struct{}
		otoCtx, ready, ctxErr = oto.NewContext(op)
		if ctxErr == nil {
			<-ready
			ctxRate = sampleRate
		}
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	if ctxRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz", ctxRate)
	}
	return otoCtx, nil
}

func openDevice(sampleRate int, src io.Reader) (player, error) {
	ctx, err := initContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return ctx.NewPlayer(src), nil
}
