// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes whole MP3 files to float32 samples via go-mp3
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// go-mp3 always produces interleaved stereo 16-bit PCM
const mp3Channels = 2

// MP3Decoder decodes MPEG-1/2 layer III files
type MP3Decoder struct{}

// Decode reads the whole file into memory
func (MP3Decoder) Decode(path string) (*audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyStream
	}

	samples, frames := frameAligned(s16leToFloat(data), mp3Channels)

	return &audio.Decoded{
		Format: audio.Format{
			SampleRate: dec.SampleRate(),
			Channels:   mp3Channels,
			BitDepth:   16,
		},
		Frames:  frames,
		Samples: samples,
	}, nil
}
