// ABOUTME: Shared fixtures for loop package tests
// ABOUTME: Builds decoded blocks and published buffers with recognisable samples
package loop

import (
	"testing"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// sampleValue gives every (channel, frame) a distinct value
func sampleValue(ch, frame int) float32 {
	return float32(ch*1000 + frame + 1)
}

func newDecoded(channels, frames, sampleRate int) *audio.Decoded {
	samples := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = sampleValue(ch, i)
		}
	}
	return &audio.Decoded{
		Format:  audio.Format{SampleRate: sampleRate, Channels: channels, BitDepth: 16},
		Frames:  frames,
		Samples: samples,
	}
}

func newConstDecoded(channels, frames int, value float32) *audio.Decoded {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return &audio.Decoded{
		Format:  audio.Format{SampleRate: 48000, Channels: channels, BitDepth: 16},
		Frames:  frames,
		Samples: samples,
	}
}

// publish publishes a buffer the way the loader does
func publish(t *testing.T, p *Pool, name string, d *audio.Decoded) *SampleBuffer {
	t.Helper()

	buf := NewSampleBuffer(name, d)
	p.Publish(buf)
	buf.Release()
	return buf
}
