// ABOUTME: Audio output interface definition and backend factory
// ABOUTME: Backends pull interleaved float32 blocks from a Renderer
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownBackend = errors.New("unknown output backend")
	ErrNotOpen        = errors.New("output not opened")
	ErrAlreadyOpen    = errors.New("output already opened")
)

// Renderer fills out[:frames*channels] with interleaved samples. It is
// called from the device callback and must not block.
type Renderer interface {
	RenderBlock(out []float32, frames int)
}

// Output represents an audio output device
type Output interface {
	// Open starts pulling audio from r
	Open(sampleRate, channels int, r Renderer) error

	// Close stops the device and releases resources
	Close() error

	// Name identifies the backend in logs
	Name() string
}

// Backends lists the names New accepts
func Backends() []string {
	return []string{"oto", "malgo", "portaudio", "wav:<path>"}
}

// New creates an output by name: oto, malgo, portaudio or wav:<path>
func New(name string) (Output, error) {
	switch {
	case name == "" || name == "oto":
		return NewOto(), nil
	case name == "malgo":
		return NewMalgo(), nil
	case name == "portaudio":
		return NewPortAudio(), nil
	case strings.HasPrefix(name, "wav:"):
		path := strings.TrimPrefix(name, "wav:")
		if path == "" {
			return nil, fmt.Errorf("%w: wav backend needs a file path", ErrUnknownBackend)
		}
		return NewWAVFile(path, true), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}
}

// renderFloat32LE renders into dst as little-endian float32 using scratch,
// in as many passes as scratch requires. Returns bytes written. Each pass
// is one RenderBlock call and so one buffer snapshot: a device period
// larger than scratch may switch samples between passes.
func renderFloat32LE(r Renderer, scratch []float32, dst []byte, channels int) int {
	frameBytes := 4 * channels
	frames := len(dst) / frameBytes
	scratchFrames := len(scratch) / channels
	if scratchFrames == 0 {
		return 0
	}

	done := 0
	for done < frames {
		n := min(frames-done, scratchFrames)
		block := scratch[:n*channels]
		r.RenderBlock(block, n)
		putFloat32LE(dst[done*frameBytes:], block)
		done += n
	}
	return frames * frameBytes
}

func putFloat32LE(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}
