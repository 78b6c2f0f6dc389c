// Package wavcap records transmitted frames to a WAV file so a stream can be
// inspected offline.
package wavcap

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-tdm-out/internal/pcm"
)

const (
	// pcmFormat is the WAVE_FORMAT_PCM tag.
	pcmFormat = 1

	// 8-bit WAV samples are unsigned.
	unsignedBits   = 8
	unsignedOffset = 128
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("wav capture closed")

// Writer encodes left-justified words as integer PCM. Slot widths that are
// not a whole number of bytes are stored in the next wider container; the
// padding bits are zero.
type Writer struct {
	file      *os.File
	enc       *wav.Encoder
	buf       *audio.IntBuffer
	channels  int
	container int
	frames    int
}

// New creates path and writes a WAV header for the given stream shape.
func New(path string, sampleRate, bitDepth, channels int) (*Writer, error) {
	if bitDepth < pcm.MinBitDepth || bitDepth > pcm.MaxBitDepth {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("invalid stream shape: %d Hz, %d channels", sampleRate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	container := containerBits(bitDepth)
	return &Writer{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, container, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: container,
		},
		channels:  channels,
		container: container,
	}, nil
}

// Write appends whole frames of interleaved words.
func (w *Writer) Write(words []int32) error {
	if w.enc == nil {
		return ErrClosed
	}
	if len(words)%w.channels != 0 {
		return fmt.Errorf("%d words is not a whole number of %d-channel frames", len(words), w.channels)
	}

	offset := 0
	if w.container == unsignedBits {
		offset = unsignedOffset
	}
	data := w.buf.Data[:0]
	for _, word := range words {
		data = append(data, pcm.WordToInt(word, w.container)+offset)
	}
	w.buf.Data = data

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to encode frames: %w", err)
	}
	w.frames += len(words) / w.channels
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// Close finalizes the header and closes the file.
func (w *Writer) Close() error {
	if w.enc == nil {
		return nil
	}
	err := w.enc.Close()
	w.enc = nil
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// containerBits rounds bitDepth up to whole bytes.
func containerBits(bitDepth int) int {
	return (bitDepth + 7) / 8 * 8
}
