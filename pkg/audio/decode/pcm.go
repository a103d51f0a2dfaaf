// ABOUTME: Integer PCM conversion helpers
// ABOUTME: Normalises 8/16/24/32-bit PCM from codec libraries to float32
package decode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// intsToFloat converts go-audio integer samples to float32
func intsToFloat(data []int, bitDepth int) []float32 {
	samples := make([]float32, len(data))
	for i, v := range data {
		samples[i] = audio.SampleFromInt(v, bitDepth)
	}
	return samples
}

// unsigned8ToFloat converts unsigned 8-bit WAV samples (silence at 128)
func unsigned8ToFloat(data []int) []float32 {
	samples := make([]float32, len(data))
	for i, v := range data {
		samples[i] = audio.SampleFromInt(v-128, 8)
	}
	return samples
}

// s16leToFloat converts little-endian 16-bit PCM bytes to float32
func s16leToFloat(data []byte) []float32 {
	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}

// frameAligned trims a trailing partial frame
func frameAligned(samples []float32, channels int) ([]float32, int) {
	frames := len(samples) / channels
	return samples[:frames*channels], frames
}
