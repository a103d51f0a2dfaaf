// ABOUTME: WAV and AIFF file decoders
// ABOUTME: Reads whole PCM files through go-audio and normalises to float32
package decode

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// WAVDecoder decodes RIFF/WAVE PCM files
type WAVDecoder struct{}

// Decode reads the whole file into memory
func (WAVDecoder) Decode(path string) (*audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind WAV file: %w", err)
	}

	dec = wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	var samples []float32
	if bitDepth == 8 {
		samples = unsigned8ToFloat(buf.Data)
	} else {
		samples = intsToFloat(buf.Data, bitDepth)
	}

	return fromIntBuffer(buf, samples, bitDepth, ErrNotWavFile)
}

// AIFFDecoder decodes AIFF PCM files
type AIFFDecoder struct{}

// Decode reads the whole file into memory
func (AIFFDecoder) Decode(path string) (*audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open AIFF file: %w", err)
	}
	defer f.Close()

	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind AIFF file: %w", err)
	}

	dec = aiff.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read AIFF data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	return fromIntBuffer(buf, intsToFloat(buf.Data, bitDepth), bitDepth, ErrNotAiffFile)
}

func fromIntBuffer(buf *goaudio.IntBuffer, samples []float32, bitDepth int, invalid error) (*audio.Decoded, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, invalid
	}

	channels := buf.Format.NumChannels
	samples, frames := frameAligned(samples, channels)

	return &audio.Decoded{
		Format: audio.Format{
			SampleRate: buf.Format.SampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Frames:  frames,
		Samples: samples,
	}, nil
}
