// ABOUTME: Render callback body for the sample looper
// ABOUTME: Loops the current buffer into interleaved output with a gain ramp
package loop

import "sync/atomic"

// Engine renders the pool's current buffer on repeat. RenderBlock is the
// only method the audio callback calls; the rest are for control and
// display goroutines.
type Engine struct {
	pool       *Pool
	channels   int
	sampleRate int
	gain       *GainRamp
	playing    atomic.Bool
}

// NewEngine creates an engine producing interleaved output with the given
// channel count
func NewEngine(pool *Pool, channels, sampleRate int, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	if channels < 1 {
		channels = 2
	}
	return &Engine{
		pool:       pool,
		channels:   channels,
		sampleRate: sampleRate,
		gain:       NewGainRamp(cfg.InitialGain, cfg.GainMin, cfg.GainMax, cfg.RampLength),
	}
}

// RenderBlock fills out[:frames*Channels()] with interleaved samples.
// It does not allocate, lock, or block.
func (e *Engine) RenderBlock(out []float32, frames int) {
	out = out[:frames*e.channels]

	buf := e.pool.CurrentSnapshot()
	if buf == nil || buf.frames == 0 {
		if buf != nil {
			buf.Release()
		}
		e.playing.Store(false)
		clear(out)
		return
	}
	e.playing.Store(true)

	src := buf.data
	srcChannels := buf.channels
	length := buf.frames
	cursor := int(buf.cursor.Load())
	if cursor >= length {
		cursor = 0
	}

	written := 0
	for written < frames {
		chunk := min(frames-written, length-cursor)

		for i := 0; i < chunk; i++ {
			g := e.gain.Next()
			frame := out[(written+i)*e.channels:]
			for c := 0; c < e.channels; c++ {
				frame[c] = src[c%srcChannels][cursor+i] * g
			}
		}

		written += chunk
		cursor += chunk
		if cursor == length {
			cursor = 0
		}
	}

	buf.cursor.Store(int64(cursor))
	e.gain.Publish()
	buf.Release()
}

// Channels returns the output channel count
func (e *Engine) Channels() int { return e.channels }

// SampleRate returns the output sample rate
func (e *Engine) SampleRate() int { return e.sampleRate }

// IsPlaying reports whether the last callback rendered a buffer
func (e *Engine) IsPlaying() bool { return e.playing.Load() }

// SetGainTarget ramps the output gain toward v
func (e *Engine) SetGainTarget(v float32) { e.gain.SetTarget(v) }

// Gain returns the gain at the end of the last callback
func (e *Engine) Gain() float32 { return e.gain.Gain() }

// GainTarget returns the most recently requested gain
func (e *Engine) GainTarget() float32 { return e.gain.Target() }
