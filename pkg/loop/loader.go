// ABOUTME: Background worker that decodes requested files and publishes them
// ABOUTME: Single-slot mailbox where the latest request wins, bounded shutdown
package loop

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
	"github.com/Resonate-Protocol/resonate-loop/pkg/audio/resample"
)

// Decoder turns a file path into decoded audio
type Decoder interface {
	Decode(path string) (*audio.Decoded, error)
}

// LoadRequest asks the loader to replace the current sample
type LoadRequest struct {
	ID   uuid.UUID
	Path string

	// Overrides Config.MaxDuration when non-zero
	MaxDuration time.Duration
}

// NewLoadRequest creates a request for path with a fresh ID
func NewLoadRequest(path string) LoadRequest {
	return LoadRequest{
		ID:   uuid.New(),
		Path: path,
	}
}

// EventKind identifies a loader outcome
type EventKind int

const (
	EventLoaded EventKind = iota
	EventRejected
	EventFailed
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventRejected:
		return "rejected"
	case EventFailed:
		return "failed"
	case EventCleared:
		return "cleared"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports the outcome of a request
type Event struct {
	Kind    EventKind
	Request LoadRequest
	Buffer  BufferInfo // set for EventLoaded
	Err     error      // set for EventRejected and EventFailed
}

// LoaderStats tracks loader activity
type LoaderStats struct {
	Requested  int64
	Superseded int64
	Loaded     int64
	Rejected   int64
	Failed     int64
	Reclaimed  int64
}

// Loader decodes files off the render path and publishes them to a Pool
type Loader struct {
	cfg     Config
	pool    *Pool
	decoder Decoder

	// OnEvent, when set before Start, receives every outcome on the
	// loader goroutine (EventCleared arrives on the caller's goroutine)
	OnEvent func(Event)

	pending atomic.Pointer[LoadRequest]
	wake    chan struct{}

	requested  atomic.Int64
	superseded atomic.Int64
	loaded     atomic.Int64
	rejected   atomic.Int64
	failed     atomic.Int64
	reclaimed  atomic.Int64

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stopErr  error
}

// NewLoader creates a loader publishing to pool
func NewLoader(pool *Pool, decoder Decoder, cfg Config) *Loader {
	ctx, cancel := context.WithCancel(context.Background())

	return &Loader{
		cfg:     cfg.withDefaults(),
		pool:    pool,
		decoder: decoder,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// RequestLoad hands req to the worker without blocking. An earlier request
// that has not been picked up yet is dropped.
func (l *Loader) RequestLoad(req LoadRequest) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	l.requested.Add(1)

	if prev := l.pending.Swap(&req); prev != nil {
		l.superseded.Add(1)
		if l.cfg.Debug {
			log.Printf("Load request %s superseded by %s", prev.Path, req.Path)
		}
	}

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestClear silences playback. Pending load requests are untouched.
func (l *Loader) RequestClear() {
	l.pool.Clear()
	l.emit(Event{Kind: EventCleared})
}

// Start launches the worker goroutine
func (l *Loader) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return ErrAlreadyStarted
	}
	l.started = true

	go l.run()
	return nil
}

// Stop signals the worker and waits up to Config.ShutdownTimeout for it
// to exit. ErrShutdownTimeout means the worker is stuck and must be
// treated as fatal.
func (l *Loader) Stop() error {
	l.stopOnce.Do(func() {
		l.cancel()

		l.mu.Lock()
		started := l.started
		l.mu.Unlock()
		if !started {
			return
		}

		timer := time.NewTimer(l.cfg.ShutdownTimeout)
		defer timer.Stop()

		select {
		case <-l.done:
			log.Printf("Loader stopped")
		case <-timer.C:
			l.stopErr = fmt.Errorf("%w after %v", ErrShutdownTimeout, l.cfg.ShutdownTimeout)
		}
	})
	return l.stopErr
}

// Stats returns loader counters
func (l *Loader) Stats() LoaderStats {
	return LoaderStats{
		Requested:  l.requested.Load(),
		Superseded: l.superseded.Load(),
		Loaded:     l.loaded.Load(),
		Rejected:   l.rejected.Load(),
		Failed:     l.failed.Load(),
		Reclaimed:  l.reclaimed.Load(),
	}
}

func (l *Loader) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if req := l.pending.Swap(nil); req != nil {
			l.load(*req)
		}
		if n := l.pool.Reclaim(); n > 0 {
			l.reclaimed.Add(int64(n))
		}

		select {
		case <-l.ctx.Done():
			return
		case <-l.wake:
		case <-ticker.C:
		}
	}
}

func (l *Loader) load(req LoadRequest) {
	if req.Path == "" {
		l.failed.Add(1)
		l.emit(Event{Kind: EventFailed, Request: req, Err: ErrEmptyPath})
		return
	}

	decoded, err := l.decoder.Decode(req.Path)
	switch {
	case err != nil:
	case decoded == nil:
		err = fmt.Errorf("%w: decoder returned no audio", audio.ErrInvalidFormat)
	default:
		// Any Decoder may be plugged in; nothing malformed reaches the render path
		err = decoded.Validate()
	}
	if err != nil {
		err = &DecodeError{Path: req.Path, Err: err}
		log.Printf("Load failed: %v", err)
		l.failed.Add(1)
		l.emit(Event{Kind: EventFailed, Request: req, Err: err})
		return
	}

	maxDuration := req.MaxDuration
	if maxDuration <= 0 {
		maxDuration = l.cfg.MaxDuration
	}
	if decoded.Seconds() >= maxDuration.Seconds() {
		err := fmt.Errorf("%w: %s is %.2fs, limit %v", ErrDurationExceeded, filepath.Base(req.Path), decoded.Seconds(), maxDuration)
		log.Printf("Load rejected: %v", err)
		l.rejected.Add(1)
		l.emit(Event{Kind: EventRejected, Request: req, Err: err})
		return
	}

	if l.cfg.OutputSampleRate > 0 && decoded.Format.SampleRate != l.cfg.OutputSampleRate {
		if l.cfg.Debug {
			log.Printf("Resampling %s from %d Hz to %d Hz", req.Path, decoded.Format.SampleRate, l.cfg.OutputSampleRate)
		}
		decoded = resample.Convert(decoded, l.cfg.OutputSampleRate)
	}

	buf := NewSampleBuffer(filepath.Base(req.Path), decoded)
	l.pool.Publish(buf)
	info := buf.Info()
	buf.Release()

	l.loaded.Add(1)
	l.emit(Event{Kind: EventLoaded, Request: req, Buffer: info})
}

func (l *Loader) emit(ev Event) {
	if l.OnEvent != nil {
		l.OnEvent(ev)
	}
}
