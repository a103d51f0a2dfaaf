// ABOUTME: Oto-based audio output implementation
// ABOUTME: The oto player reads float32 samples straight from the Renderer
package output

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// Frames rendered per pass inside Read
const otoScratchFrames = 4096

// oto allows one context per process
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
	otoFormat  [2]int
)

// Oto output implementation using oto library
type Oto struct {
	player   *oto.Player
	renderer atomic.Pointer[Renderer]
	scratch  []float32
	channels int
	mu       sync.Mutex // setup and teardown only
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

func (o *Oto) Name() string { return "oto" }

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int, r Renderer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return ErrAlreadyOpen
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
		otoFormat = [2]int{sampleRate, channels}
	})
	if otoErr != nil {
		return otoErr
	}
	if otoFormat != [2]int{sampleRate, channels} {
		return fmt.Errorf("oto context already running at %dHz/%dch", otoFormat[0], otoFormat[1])
	}

	o.channels = channels
	o.scratch = make([]float32, otoScratchFrames*channels)
	o.renderer.Store(&r)

	o.player = otoContext.NewPlayer(o)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto/f32)", sampleRate, channels)
	return nil
}

// Read is called by oto on its audio goroutine
func (o *Oto) Read(p []byte) (int, error) {
	r := o.renderer.Load()
	if r == nil || len(p) < 4*o.channels {
		clear(p)
		return len(p), nil
	}
	return renderFloat32LE(*r, o.scratch, p, o.channels), nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.renderer.Store(nil)
	if o.player == nil {
		return nil
	}

	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	return nil
}
