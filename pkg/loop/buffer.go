// ABOUTME: Reference-counted block of decoded sample data
// ABOUTME: Channel data is fixed at construction; only the playback cursor moves
package loop

import (
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// SampleBuffer holds one decoded sample, one slice per channel.
//
// The reference count starts at 1 for the creator. The pool adds one for
// its listing and one for the current slot, the render path adds one per
// snapshot. The count only reaches zero through Pool.Reclaim.
type SampleBuffer struct {
	id         uuid.UUID
	name       string
	sampleRate int
	channels   int
	frames     int
	data       [][]float32

	cursor atomic.Int64
	refs   atomic.Int32
	freed  atomic.Bool
}

// NewSampleBuffer de-interleaves decoded audio into a new buffer holding
// one reference for the caller
func NewSampleBuffer(name string, d *audio.Decoded) *SampleBuffer {
	channels := d.Format.Channels
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, d.Frames)
	}
	for i := 0; i < d.Frames; i++ {
		for ch := 0; ch < channels; ch++ {
			data[ch][i] = d.Samples[i*channels+ch]
		}
	}

	b := &SampleBuffer{
		id:         uuid.New(),
		name:       name,
		sampleRate: d.Format.SampleRate,
		channels:   channels,
		frames:     d.Frames,
		data:       data,
	}
	b.refs.Store(1)

	log.Printf("Buffer created: %s (%d ch, %d frames, %d Hz)", name, channels, d.Frames, d.Format.SampleRate)
	return b
}

func (b *SampleBuffer) ID() uuid.UUID   { return b.id }
func (b *SampleBuffer) Name() string    { return b.name }
func (b *SampleBuffer) Channels() int   { return b.channels }
func (b *SampleBuffer) Frames() int     { return b.frames }
func (b *SampleBuffer) SampleRate() int { return b.sampleRate }

// Cursor returns the next frame the render path will play
func (b *SampleBuffer) Cursor() int {
	return int(b.cursor.Load())
}

// Refs returns the current reference count
func (b *SampleBuffer) Refs() int32 {
	return b.refs.Load()
}

// Freed reports whether the pool has reclaimed this buffer
func (b *SampleBuffer) Freed() bool {
	return b.freed.Load()
}

// Channel returns the samples of one channel. The slice must not be modified.
func (b *SampleBuffer) Channel(ch int) []float32 {
	return b.data[ch]
}

// Info returns a display snapshot
func (b *SampleBuffer) Info() BufferInfo {
	return BufferInfo{
		ID:         b.id,
		Name:       b.name,
		Channels:   b.channels,
		Frames:     b.frames,
		SampleRate: b.sampleRate,
		Cursor:     b.Cursor(),
	}
}

// Retain adds a reference. It fails once the buffer has been reclaimed.
func (b *SampleBuffer) Retain() bool {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return false
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference
func (b *SampleBuffer) Release() {
	if b.refs.Add(-1) == 0 {
		b.free()
	}
}

// tryReclaim frees the buffer if exactly refs references remain
func (b *SampleBuffer) tryReclaim(refs int32) bool {
	if !b.refs.CompareAndSwap(refs, 0) {
		return false
	}
	b.free()
	return true
}

func (b *SampleBuffer) free() {
	if b.freed.Swap(true) {
		return
	}
	log.Printf("Buffer destroyed: %s", b.name)
}

// BufferInfo describes a buffer for display
type BufferInfo struct {
	ID         uuid.UUID
	Name       string
	Channels   int
	Frames     int
	SampleRate int
	Cursor     int
}
