// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded sample blocks and sample conversions
package audio

import (
	"errors"
	"fmt"
	"time"
)

const (
	// 16-bit PCM full scale
	Max16Bit = 32767
	Min16Bit = -32768
)

var (
	ErrInvalidFormat  = errors.New("invalid audio format")
	ErrSampleMismatch = errors.New("sample count does not match frames and channels")
)

// Format describes the shape of decoded audio
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int // Bit depth of the source file, informational
}

// Decoded is a fully decoded block of interleaved float32 samples in [-1, 1]
type Decoded struct {
	Format  Format
	Frames  int
	Samples []float32 // len == Frames * Format.Channels
}

// Seconds returns the decoded length in seconds
func (d *Decoded) Seconds() float64 {
	if d.Format.SampleRate <= 0 {
		return 0
	}
	return float64(d.Frames) / float64(d.Format.SampleRate)
}

// Duration returns the decoded length as a time.Duration
func (d *Decoded) Duration() time.Duration {
	return time.Duration(d.Seconds() * float64(time.Second))
}

// Validate checks that the block is internally consistent
func (d *Decoded) Validate() error {
	if d.Format.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, d.Format.Channels)
	}
	if d.Format.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, d.Format.SampleRate)
	}
	if d.Frames < 0 {
		return fmt.Errorf("%w: %d frames", ErrInvalidFormat, d.Frames)
	}
	if len(d.Samples) != d.Frames*d.Format.Channels {
		return fmt.Errorf("%w: have %d, want %d", ErrSampleMismatch, len(d.Samples), d.Frames*d.Format.Channels)
	}
	return nil
}

// Channel copies one channel out of the interleaved samples
func (d *Decoded) Channel(ch int) []float32 {
	out := make([]float32, d.Frames)
	channels := d.Format.Channels
	for i := range out {
		out[i] = d.Samples[i*channels+ch]
	}
	return out
}

// SampleFromInt16 converts a 16-bit PCM sample to float32 in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleToInt16 converts a float32 sample to 16-bit PCM with clipping
func SampleToInt16(sample float32) int16 {
	scaled := sample * 32768.0
	if scaled > Max16Bit {
		return Max16Bit
	}
	if scaled < Min16Bit {
		return Min16Bit
	}
	return int16(scaled)
}

// SampleFromInt converts a signed integer sample of the given bit depth to float32
func SampleFromInt(sample int, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}
