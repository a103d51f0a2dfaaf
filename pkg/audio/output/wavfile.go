// ABOUTME: WAV file output for headless playback and offline bounces
// ABOUTME: Pulls blocks from the Renderer and writes 16-bit PCM through go-audio/wav
package output

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// Block length written per tick in realtime mode
const wavBlockDuration = 10 * time.Millisecond

var ErrRealtimeBounce = errors.New("bounce not available on a realtime WAV output")

// WAVFile writes rendered audio to a WAV file. In realtime mode a ticker
// pulls one block every 10ms, standing in for a device callback. Otherwise
// the caller drives it with Bounce.
type WAVFile struct {
	path     string
	realtime bool

	file       *os.File
	encoder    *wav.Encoder
	renderer   Renderer
	channels   int
	sampleRate int
	scratch    []float32
	intBuf     *goaudio.IntBuffer
	written    atomic.Int64

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
}

// NewWAVFile creates a WAV output writing to path
func NewWAVFile(path string, realtime bool) *WAVFile {
	return &WAVFile{
		path:     path,
		realtime: realtime,
	}
}

func (w *WAVFile) Name() string { return "wav:" + w.path }

// Open creates the file and, in realtime mode, starts the writer goroutine
func (w *WAVFile) Open(sampleRate, channels int, r Renderer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return ErrAlreadyOpen
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	blockFrames := int(int64(sampleRate) * int64(wavBlockDuration) / int64(time.Second))
	if blockFrames < 1 {
		blockFrames = 1
	}

	w.file = f
	w.encoder = wav.NewEncoder(f, sampleRate, 16, channels, 1)
	w.renderer = r
	w.channels = channels
	w.sampleRate = sampleRate
	w.scratch = make([]float32, blockFrames*channels)
	w.intBuf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, blockFrames*channels),
		SourceBitDepth: 16,
	}

	if w.realtime {
		w.stopChan = make(chan struct{})
		w.done = make(chan struct{})
		go w.run()
	}

	log.Printf("Audio output initialized: %dHz, %d channels (wav file %s)", sampleRate, channels, w.path)
	return nil
}

func (w *WAVFile) run() {
	defer close(w.done)

	ticker := time.NewTicker(wavBlockDuration)
	defer ticker.Stop()

	blockFrames := len(w.scratch) / w.channels
	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if err := w.writeBlock(blockFrames); err != nil {
				log.Printf("WAV output error: %v", err)
				return
			}
		}
	}
}

// Bounce renders frames synchronously. Only valid when not realtime.
func (w *WAVFile) Bounce(frames int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.realtime {
		return ErrRealtimeBounce
	}
	if w.encoder == nil {
		return ErrNotOpen
	}

	blockFrames := len(w.scratch) / w.channels
	for frames > 0 {
		n := min(frames, blockFrames)
		if err := w.writeBlock(n); err != nil {
			return err
		}
		frames -= n
	}
	return nil
}

func (w *WAVFile) writeBlock(frames int) error {
	block := w.scratch[:frames*w.channels]
	w.renderer.RenderBlock(block, frames)

	w.intBuf.Data = w.intBuf.Data[:len(block)]
	for i, s := range block {
		w.intBuf.Data[i] = int(audio.SampleToInt16(s))
	}
	if err := w.encoder.Write(w.intBuf); err != nil {
		return fmt.Errorf("failed to write WAV block: %w", err)
	}
	w.written.Add(int64(frames))
	return nil
}

// FramesWritten returns how many frames have been written so far
func (w *WAVFile) FramesWritten() int {
	return int(w.written.Load())
}

// Close stops the writer and finalizes the WAV header
func (w *WAVFile) Close() error {
	if w.realtime && w.stopChan != nil {
		w.stopOnce.Do(func() {
			close(w.stopChan)
			<-w.done
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	w.file = nil
	w.encoder = nil

	if encErr != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", encErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close WAV file: %w", fileErr)
	}
	log.Printf("Wrote %d frames to %s", w.written.Load(), w.path)
	return nil
}
