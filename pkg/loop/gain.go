// ABOUTME: Per-sample linear gain ramp
// ABOUTME: Control goroutines set a target; the render path interpolates toward it
package loop

import (
	"math"
	"sync/atomic"
)

// Advance returns the gain one sample further along a linear ramp from
// current to target with remaining samples left. It never passes target
// and returns target exactly when remaining is 1 or less.
func Advance(current, target float32, remaining int) float32 {
	if remaining <= 1 {
		return target
	}
	next := current + (target-current)/float32(remaining)
	if (target >= current && next > target) || (target < current && next < target) {
		return target
	}
	return next
}

// GainRamp interpolates gain sample by sample.
//
// SetTarget may be called from any goroutine; it only stores the target
// and bumps a generation. Next must only be called from the render path,
// which notices the new generation and restarts the ramp from wherever
// the gain currently is.
type GainRamp struct {
	min    float32
	max    float32
	length int

	target     atomic.Uint32 // float32 bits
	generation atomic.Uint64
	published  atomic.Uint32 // float32 bits of current, for display

	// render path only
	current   float32
	to        float32
	remaining int
	seen      uint64
}

// NewGainRamp creates a ramp resting at initial
func NewGainRamp(initial, min, max float32, length int) *GainRamp {
	if length < 1 {
		length = 1
	}
	g := &GainRamp{
		min:    min,
		max:    max,
		length: length,
	}
	initial = g.clamp(initial)
	g.current = initial
	g.to = initial
	g.target.Store(math.Float32bits(initial))
	g.published.Store(math.Float32bits(initial))
	return g
}

func (g *GainRamp) clamp(v float32) float32 {
	if v < g.min {
		return g.min
	}
	if v > g.max {
		return g.max
	}
	return v
}

// SetTarget requests a ramp to v, clamped to the configured range.
// It supersedes any ramp in progress.
func (g *GainRamp) SetTarget(v float32) {
	g.target.Store(math.Float32bits(g.clamp(v)))
	g.generation.Add(1)
}

// Target returns the most recently requested gain
func (g *GainRamp) Target() float32 {
	return math.Float32frombits(g.target.Load())
}

// Gain returns the gain the render path last published
func (g *GainRamp) Gain() float32 {
	return math.Float32frombits(g.published.Load())
}

// Range returns the clamp range
func (g *GainRamp) Range() (float32, float32) {
	return g.min, g.max
}

// Next returns the gain for the current sample and steps the ramp
func (g *GainRamp) Next() float32 {
	if gen := g.generation.Load(); gen != g.seen {
		g.seen = gen
		g.to = math.Float32frombits(g.target.Load())
		g.remaining = g.length
	}

	out := g.current
	if g.remaining > 0 {
		g.current = Advance(g.current, g.to, g.remaining)
		g.remaining--
		if g.remaining == 0 {
			g.current = g.to
		}
	}
	return out
}

// Publish makes the render-side gain visible to Gain
func (g *GainRamp) Publish() {
	g.published.Store(math.Float32bits(g.current))
}
