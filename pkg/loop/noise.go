// ABOUTME: White noise generator with a ramped level
// ABOUTME: Alternative renderer used to check an output device without loading a file
package loop

import (
	"math/rand/v2"
	"time"
)

const (
	NoiseLevelMax     = 0.5
	NoiseLevelDefault = 0.125
)

// Noise renders uniform white noise scaled by a ramped level
type Noise struct {
	channels int
	level    *GainRamp
	rng      *rand.Rand
}

// NewNoise creates a noise generator at the default level
func NewNoise(channels, rampLength int) *Noise {
	if channels < 1 {
		channels = 2
	}
	seed := uint64(time.Now().UnixNano())
	return &Noise{
		channels: channels,
		level:    NewGainRamp(NoiseLevelDefault, 0, NoiseLevelMax, rampLength),
		rng:      rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// RenderBlock fills out[:frames*channels] with noise. Each channel gets
// independent samples at the same level.
func (n *Noise) RenderBlock(out []float32, frames int) {
	for i := 0; i < frames; i++ {
		g := n.level.Next()
		frame := out[i*n.channels : (i+1)*n.channels]
		for c := range frame {
			frame[c] = (n.rng.Float32()*2 - 1) * g
		}
	}
	n.level.Publish()
}

// Channels returns the output channel count
func (n *Noise) Channels() int { return n.channels }

// SetLevel ramps the noise level toward v, clamped to [0, 0.5]
func (n *Noise) SetLevel(v float32) { n.level.SetTarget(v) }

// Level returns the level at the end of the last callback
func (n *Noise) Level() float32 { return n.level.Gain() }

// LevelTarget returns the level the generator is ramping toward
func (n *Noise) LevelTarget() float32 { return n.level.Target() }
