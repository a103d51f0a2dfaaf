// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes whole Ogg Opus files via libopusfile streams
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/hraban/opus.v2"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

const (
	// libopusfile always decodes at 48kHz
	opusSampleRate = 48000

	// Largest Opus frame: 120ms at 48kHz
	opusMaxFrame = 5760
)

// OpusDecoder decodes Ogg Opus files. The stream API does not report the
// channel count, so it must be supplied; zero means stereo.
type OpusDecoder struct {
	Channels int
}

// Decode reads the whole stream into memory
func (d OpusDecoder) Decode(path string) (*audio.Decoded, error) {
	channels := d.Channels
	if channels == 0 {
		channels = 2
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Opus file: %w", err)
	}
	defer f.Close()

	stream, err := opus.NewStream(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	pcm := make([]float32, opusMaxFrame*channels)
	var samples []float32
	for {
		n, err := stream.ReadFloat32(pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		samples = append(samples, pcm[:n*channels]...)
	}

	if len(samples) == 0 {
		return nil, ErrEmptyStream
	}
	samples, frames := frameAligned(samples, channels)

	return &audio.Decoded{
		Format: audio.Format{
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
		Frames:  frames,
		Samples: samples,
	}, nil
}
