// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes whole FLAC files frame by frame via mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// FLACDecoder decodes FLAC files
type FLACDecoder struct{}

// Decode reads every frame and interleaves the subframes
func (FLACDecoder) Decode(path string) (*audio.Decoded, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels < 1 {
		return nil, fmt.Errorf("%w: FLAC stream has %d channels", audio.ErrInvalidFormat, channels)
	}

	samples := make([]float32, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("flac frame error: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				samples = append(samples, audio.SampleFromInt(int(sample), bitDepth))
			}
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyStream
	}
	samples, frames := frameAligned(samples, channels)

	return &audio.Decoded{
		Format: audio.Format{
			SampleRate: int(info.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Frames:  frames,
		Samples: samples,
	}, nil
}
