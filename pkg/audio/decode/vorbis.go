// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes whole Ogg Vorbis files via jfreymuth/oggvorbis
package decode

import (
	"fmt"
	"os"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// VorbisDecoder decodes Ogg Vorbis files
type VorbisDecoder struct{}

// Decode reads the whole file into memory
func (VorbisDecoder) Decode(path string) (*audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Ogg file: %w", err)
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode error: %w", err)
	}
	if format == nil || format.Channels < 1 {
		return nil, fmt.Errorf("%w: missing vorbis header", audio.ErrInvalidFormat)
	}
	if len(data) == 0 {
		return nil, ErrEmptyStream
	}

	samples, frames := frameAligned(data, format.Channels)

	return &audio.Decoded{
		Format: audio.Format{
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   32,
		},
		Frames:  frames,
		Samples: samples,
	}, nil
}
