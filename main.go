// ABOUTME: Entry point for the Resonate loop player
// ABOUTME: Parses CLI flags and runs the looper with TUI or streaming logs
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Resonate-Protocol/resonate-loop/internal/app"
	"github.com/Resonate-Protocol/resonate-loop/internal/version"
	"github.com/Resonate-Protocol/resonate-loop/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-loop/pkg/loop"
)

var (
	outputName  = flag.String("output", "oto", "Audio output: "+strings.Join(output.Backends(), ", "))
	noise       = flag.Bool("noise", false, "Play white noise instead of loaded samples")
	sampleRate  = flag.Int("rate", 48000, "Output sample rate")
	channels    = flag.Int("channels", 2, "Output channel count")
	resample    = flag.Bool("resample", true, "Convert loaded files to the output sample rate")
	maxDuration = flag.Duration("max-duration", 2*time.Second, "Reject files this long or longer")
	initialGain = flag.Float64("gain", 1, "Initial gain (0-1)")
	loadPath    = flag.String("load", "", "File to load at startup")
	port        = flag.Int("port", 8928, "Remote control port (0 disables)")
	noMDNS      = flag.Bool("no-mdns", false, "Do not advertise via mDNS")
	name        = flag.String("name", "", "Player friendly name (default: hostname-loop)")
	logFile     = flag.String("log-file", "resonate-loop.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	debug       = flag.Bool("debug", false, "Verbose loader and pool logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	// TUI only makes sense on an interactive terminal
	useTUI := !*noTUI && term.IsTerminal(int(os.Stdout.Fd()))

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	playerName := *name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-loop", hostname)
	}

	loopCfg := loop.DefaultConfig()
	loopCfg.MaxDuration = *maxDuration
	loopCfg.InitialGain = float32(*initialGain)
	loopCfg.Debug = *debug

	player := app.New(app.Config{
		Name:        playerName,
		Output:      *outputName,
		SampleRate:  *sampleRate,
		Channels:    *channels,
		Noise:       *noise,
		Resample:    *resample,
		Port:        *port,
		NoMDNS:      *noMDNS,
		UseTUI:      useTUI,
		Debug:       *debug,
		InitialPath: *loadPath,
		Loop:        loopCfg,
	})

	log.Printf("Starting %s %s: %s", version.Product, version.Version, playerName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := player.Run(ctx); err != nil {
		if errors.Is(err, loop.ErrShutdownTimeout) {
			log.Fatalf("Loader did not stop in time: %v", err)
		}
		log.Fatalf("Player error: %v", err)
	}
}
