// ABOUTME: Main looper application orchestration
// ABOUTME: Coordinates loader, render engine, audio output, remote control and UI
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-loop/internal/discovery"
	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
	"github.com/Resonate-Protocol/resonate-loop/internal/remote"
	"github.com/Resonate-Protocol/resonate-loop/internal/ui"
	"github.com/Resonate-Protocol/resonate-loop/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-loop/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-loop/pkg/loop"
)

const (
	ModeLoop  = "loop"
	ModeNoise = "noise"

	statusInterval = 250 * time.Millisecond
)

// Status is the player state shown by the UI and sent to remote clients
type Status = protocol.PlayerStatus

// Controller is the surface the UI drives
type Controller interface {
	RequestLoad(path string) uuid.UUID
	RequestClear()
	SetGainTarget(v float32)
	Status() Status
}

var (
	_ Controller        = (*Player)(nil)
	_ remote.Controller = (*Player)(nil)
)

// Config holds player configuration
type Config struct {
	Name string

	// Output backend name, see output.New
	Output     string
	SampleRate int
	Channels   int

	// Play white noise instead of loaded samples
	Noise bool

	// Convert loaded files to SampleRate before publishing
	Resample bool

	// Remote control port; 0 disables the server
	Port   int
	NoMDNS bool

	UseTUI bool
	Debug  bool

	// File to load once started
	InitialPath string

	Loop loop.Config

	// Decoder replaces the extension registry when set
	Decoder loop.Decoder

	// OnNotice receives every notice after it is logged
	OnNotice func(protocol.Notice)
}

// Player represents the main looper application
type Player struct {
	config   Config
	registry *decode.Registry

	pool   *loop.Pool
	loader *loop.Loader
	engine *loop.Engine
	noise  *loop.Noise

	output    output.Output
	remote    *remote.Server
	discovery *discovery.Manager

	controls *ui.Controls
	tuiProg  *tea.Program

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// New creates a new player. Zero-valued fields get defaults.
func New(config Config) *Player {
	if config.Name == "" {
		config.Name = "resonate-loop"
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 48000
	}
	if config.Channels <= 0 {
		config.Channels = 2
	}
	if config.Loop == (loop.Config{}) {
		config.Loop = loop.DefaultConfig()
	}
	config.Loop.Debug = config.Loop.Debug || config.Debug
	if config.Resample {
		config.Loop.OutputSampleRate = config.SampleRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		config:   config,
		registry: decode.DefaultRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.Noise {
		p.noise = loop.NewNoise(config.Channels, config.Loop.RampLength)
		return p
	}

	var decoder loop.Decoder = p.registry
	if config.Decoder != nil {
		decoder = config.Decoder
	}

	p.pool = loop.NewPool(config.Loop)
	p.engine = loop.NewEngine(p.pool, config.Channels, config.SampleRate, config.Loop)
	p.loader = loop.NewLoader(p.pool, decoder, config.Loop)
	p.loader.OnEvent = p.handleEvent

	return p
}

// Mode returns "loop" or "noise"
func (p *Player) Mode() string {
	if p.noise != nil {
		return ModeNoise
	}
	return ModeLoop
}

func (p *Player) renderer() output.Renderer {
	if p.noise != nil {
		return p.noise
	}
	return p.engine
}

// Start opens the output and starts every background component
func (p *Player) Start() error {
	if p.loader != nil {
		if err := p.loader.Start(); err != nil {
			return fmt.Errorf("failed to start loader: %w", err)
		}
	}

	out, err := output.New(p.config.Output)
	if err != nil {
		return err
	}
	if err := out.Open(p.config.SampleRate, p.config.Channels, p.renderer()); err != nil {
		return fmt.Errorf("failed to open %s output: %w", out.Name(), err)
	}
	p.output = out
	log.Printf("Output %s: %d Hz, %d channels, mode %s", out.Name(), p.config.SampleRate, p.config.Channels, p.Mode())

	if p.config.Port > 0 {
		p.remote = remote.New(remote.Config{
			Port:  p.config.Port,
			Name:  p.config.Name,
			Debug: p.config.Debug,
		}, p)
		if err := p.remote.Start(); err != nil {
			return fmt.Errorf("failed to start remote control: %w", err)
		}

		if !p.config.NoMDNS {
			p.discovery = discovery.NewManager(discovery.Config{
				ServiceName: p.config.Name,
				Port:        p.config.Port,
			})
			if err := p.discovery.Advertise(); err != nil {
				log.Printf("mDNS advertisement failed: %v", err)
			}
		}
	}

	if p.config.UseTUI {
		p.controls = ui.NewControls()
		p.tuiProg = ui.Run(p.config.Name, p.Status().GainTarget, p.controls)

		p.wg.Add(3)
		go func() {
			defer p.wg.Done()
			if _, err := p.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		go p.handleControls()
		go p.statusLoop()
	}

	if p.config.InitialPath != "" {
		p.RequestLoad(p.config.InitialPath)
	}

	return nil
}

// Run starts the player and blocks until ctx is done or the UI quits
func (p *Player) Run(ctx context.Context) error {
	if err := p.Start(); err != nil {
		if stopErr := p.Stop(); stopErr != nil {
			log.Printf("Error during shutdown: %v", stopErr)
		}
		return err
	}

	var quit chan ui.QuitMsg
	if p.controls != nil {
		quit = p.controls.Quit
	}

	select {
	case <-ctx.Done():
		log.Printf("Shutdown requested")
	case <-quit:
		log.Printf("Received quit signal from TUI")
	}

	return p.Stop()
}

// Stop shuts everything down. A loader that does not finish within the
// configured timeout yields loop.ErrShutdownTimeout.
func (p *Player) Stop() error {
	p.stopOnce.Do(func() {
		p.cancel()

		if p.tuiProg != nil {
			p.tuiProg.Quit()
		}
		if p.discovery != nil {
			p.discovery.Stop()
		}
		if p.remote != nil {
			p.remote.Stop()
		}

		// No callbacks may run once the pool is closed
		if p.output != nil {
			if err := p.output.Close(); err != nil {
				log.Printf("Error closing output: %v", err)
			}
		}

		if p.loader != nil {
			if err := p.loader.Stop(); err != nil {
				p.stopErr = err
				if errors.Is(err, loop.ErrShutdownTimeout) {
					// The loader may still publish; leave the pool alone
					return
				}
			}
			p.pool.Close()
		}

		p.wg.Wait()
		log.Printf("Player stopped")
	})

	return p.stopErr
}

// RequestLoad asks the loader for path and returns the request ID
func (p *Player) RequestLoad(path string) uuid.UUID {
	req := loop.NewLoadRequest(path)
	p.Load(req)
	return req.ID
}

// Load queues a prepared request; the latest pending request wins
func (p *Player) Load(req loop.LoadRequest) {
	if p.loader == nil {
		p.notify(protocol.Notice{
			Level:     protocol.LevelWarning,
			Kind:      "unavailable",
			Path:      req.Path,
			RequestID: req.ID.String(),
			Message:   "Loading is disabled in noise mode",
		})
		return
	}

	if p.config.Debug {
		log.Printf("Load requested: %s (%s)", req.Path, req.ID)
	}
	p.loader.RequestLoad(req)
}

// RequestClear switches playback to silence
func (p *Player) RequestClear() {
	if p.loader == nil {
		return
	}
	p.loader.RequestClear()
}

// SetGainTarget ramps the output gain (or noise level) toward v
func (p *Player) SetGainTarget(v float32) {
	if p.noise != nil {
		p.noise.SetLevel(v)
		return
	}
	p.engine.SetGainTarget(v)
}

// Formats lists the file extensions the player can decode
func (p *Player) Formats() []string {
	return p.registry.Extensions()
}

// Status returns a snapshot of the player state
func (p *Player) Status() Status {
	st := Status{
		Mode:       p.Mode(),
		SampleRate: p.config.SampleRate,
		Channels:   p.config.Channels,
	}

	if p.noise != nil {
		st.Playing = true
		st.Gain = p.noise.Level()
		st.GainTarget = p.noise.LevelTarget()
		st.GainMax = loop.NoiseLevelMax
		return st
	}

	st.Gain = p.engine.Gain()
	st.GainTarget = p.engine.GainTarget()
	st.GainMax = p.config.Loop.GainMax
	st.LiveBuffers = p.pool.Live()

	if info, ok := p.pool.Current(); ok {
		st.Playing = info.Frames > 0
		st.Buffer = &protocol.BufferStatus{
			ID:         info.ID.String(),
			Name:       info.Name,
			Channels:   info.Channels,
			Frames:     info.Frames,
			SampleRate: info.SampleRate,
			Cursor:     info.Cursor,
		}
	}

	return st
}

// Stats returns loader counters; zero in noise mode
func (p *Player) Stats() loop.LoaderStats {
	if p.loader == nil {
		return loop.LoaderStats{}
	}
	return p.loader.Stats()
}

// handleEvent turns loader outcomes into notices
func (p *Player) handleEvent(ev loop.Event) {
	n := protocol.Notice{
		Kind:      ev.Kind.String(),
		Path:      ev.Request.Path,
		RequestID: ev.Request.ID.String(),
	}

	switch ev.Kind {
	case loop.EventLoaded:
		n.Level = protocol.LevelInfo
		n.Message = fmt.Sprintf("Loaded %s: %d Hz, %d ch, %d frames",
			ev.Buffer.Name, ev.Buffer.SampleRate, ev.Buffer.Channels, ev.Buffer.Frames)
	case loop.EventRejected:
		n.Level = protocol.LevelWarning
		n.Message = ev.Err.Error()
	case loop.EventFailed:
		n.Level = protocol.LevelError
		n.Message = failureMessage(ev.Err)
	case loop.EventCleared:
		n.Level = protocol.LevelInfo
		n.Message = "Cleared, playing silence"
		n.RequestID = ""
	}

	p.notify(n)
}

func failureMessage(err error) string {
	var decErr *loop.DecodeError
	switch {
	case errors.Is(err, decode.ErrUnsupportedFormat) && errors.As(err, &decErr):
		return fmt.Sprintf("Unsupported file type: %s", decErr.Path)
	case errors.Is(err, loop.ErrEmptyPath):
		return "No file given"
	default:
		return err.Error()
	}
}

func (p *Player) notify(n protocol.Notice) {
	log.Printf("[%s] %s", n.Level, n.Message)

	if p.tuiProg != nil {
		p.tuiProg.Send(ui.NoticeMsg(n))
	}
	if p.remote != nil {
		p.remote.BroadcastNotice(n)
		p.remote.BroadcastStatus()
	}
	if p.config.OnNotice != nil {
		p.config.OnNotice(n)
	}
}

// handleControls processes commands from the TUI
func (p *Player) handleControls() {
	defer p.wg.Done()

	for {
		select {
		case cmd := <-p.controls.Commands:
			switch cmd.Kind {
			case ui.CommandLoad:
				p.RequestLoad(cmd.Path)
			case ui.CommandClear:
				p.RequestClear()
			case ui.CommandGain:
				if p.config.Debug {
					log.Printf("Gain target: %.2f", cmd.Gain)
				}
				p.SetGainTarget(cmd.Gain)
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// statusLoop periodically pushes player status to the TUI
func (p *Player) statusLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tuiProg.Send(ui.StatusMsg{Status: p.Status()})
		case <-p.ctx.Done():
			return
		}
	}
}
