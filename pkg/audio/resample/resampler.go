// ABOUTME: Linear-interpolation resampler for decoded loop material
// ABOUTME: Converts whole float32 buffers between sample rates before publishing
package resample

import (
	"math"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// OutputFrames returns how many frames a whole-buffer conversion produces
func (r *Resampler) OutputFrames(inputFrames int) int {
	if inputFrames <= 0 {
		return 0
	}
	out := int(math.Round(float64(inputFrames) / r.ratio))
	if out < 1 {
		out = 1
	}
	return out
}

// Resample converts a complete interleaved loop. The final output frames
// interpolate towards frame 0 so the loop point stays continuous.
// Returns the number of samples written to output.
func (r *Resampler) Resample(input []float32, output []float32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	outputFrames := r.OutputFrames(inputFrames)
	if limit := len(output) / r.channels; outputFrames > limit {
		outputFrames = limit
	}

	for outIdx := 0; outIdx < outputFrames; outIdx++ {
		pos := float64(outIdx) * r.ratio
		inputIdx := int(pos)
		if inputIdx >= inputFrames {
			inputIdx = inputFrames - 1
		}
		next := inputIdx + 1
		if next >= inputFrames {
			next = 0
		}
		frac := float32(pos - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[next*r.channels+ch]
			output[outIdx*r.channels+ch] = s1 + (s2-s1)*frac
		}
	}

	return outputFrames * r.channels
}

// Convert returns d at outputRate. Blocks already at that rate are returned as is.
func Convert(d *audio.Decoded, outputRate int) *audio.Decoded {
	if outputRate <= 0 || d.Format.SampleRate == outputRate || d.Frames == 0 {
		return d
	}

	r := New(d.Format.SampleRate, outputRate, d.Format.Channels)
	out := make([]float32, r.OutputFrames(d.Frames)*d.Format.Channels)
	n := r.Resample(d.Samples, out)

	format := d.Format
	format.SampleRate = outputRate
	return &audio.Decoded{
		Format:  format,
		Frames:  n / d.Format.Channels,
		Samples: out[:n],
	}
}
