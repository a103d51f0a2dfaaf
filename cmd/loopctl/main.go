// ABOUTME: Command-line remote control for running loop players
// ABOUTME: Finds players via mDNS and sends load, clear and gain commands
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-loop/internal/client"
	"github.com/Resonate-Protocol/resonate-loop/internal/discovery"
	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
)

var (
	addr        = flag.String("addr", "", "Player address host:port (skip mDNS)")
	playerName  = flag.String("player", "", "Pick a discovered player by name")
	timeout     = flag.Duration("timeout", 3*time.Second, "Discovery and reply timeout")
	maxDuration = flag.Duration("max-duration", 0, "Per-request duration limit for load (0 uses the player's)")
	verbose     = flag.Bool("v", false, "Log discovery and connection details")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: loopctl [flags] <command> [args]

Commands:
  list            List players on the network
  status          Print the player status
  load <file>     Load a sample file
  clear           Stop playback (silence)
  gain <0-1>      Ramp the output gain
  watch           Print status and notices until interrupted

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if args[0] == "list" {
		listPlayers()
		return
	}

	target, err := resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := client.NewClient(client.Config{
		ServerAddr: target,
		ClientID:   uuid.New().String(),
		Name:       "loopctl",
	})
	if err := c.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", target, err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(c, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		c.Close()
		os.Exit(1)
	}
}

func run(c *client.Client, args []string) error {
	switch args[0] {
	case "status":
		printStatus(waitStatus(c))
		return nil

	case "load":
		if len(args) < 2 {
			return fmt.Errorf("load needs a file path")
		}
		path, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		// Drop the status sent on connect so the reply is ours
		drainStatus(c)
		if err := c.Load(path, *maxDuration); err != nil {
			return fmt.Errorf("send load: %w", err)
		}
		return waitOutcome(c, path)

	case "clear":
		if err := c.Clear(); err != nil {
			return fmt.Errorf("send clear: %w", err)
		}
		return waitOutcome(c, "")

	case "gain":
		if len(args) < 2 {
			return fmt.Errorf("gain needs a value")
		}
		v, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return fmt.Errorf("invalid gain %q: %w", args[1], err)
		}
		if err := c.SetGain(float32(v)); err != nil {
			return fmt.Errorf("send gain: %w", err)
		}
		drainStatus(c)
		printStatus(waitStatus(c))
		return nil

	case "watch":
		watch(c)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func resolve() (string, error) {
	if *addr != "" {
		return *addr, nil
	}

	players := lookup()
	if len(players) == 0 {
		return "", fmt.Errorf("no players found after %v (use -addr)", *timeout)
	}
	if *playerName == "" {
		if len(players) > 1 {
			log.Printf("Found %d players, using %s", len(players), players[0].Name)
		}
		return players[0].Addr(), nil
	}
	for _, p := range players {
		if p.Name == *playerName {
			return p.Addr(), nil
		}
	}
	return "", fmt.Errorf("player %q not found", *playerName)
}

func lookup() []*discovery.PlayerInfo {
	m := discovery.NewManager(discovery.Config{})
	defer m.Stop()
	return m.Lookup(*timeout)
}

func listPlayers() {
	players := lookup()
	if len(players) == 0 {
		fmt.Println("No players found")
		return
	}
	for _, p := range players {
		fmt.Printf("%-30s %s\n", p.Name, p.Addr())
	}
}

func drainStatus(c *client.Client) {
	for {
		select {
		case <-c.Status:
		default:
			return
		}
	}
}

func waitStatus(c *client.Client) protocol.PlayerStatus {
	select {
	case st := <-c.Status:
		return st
	case <-time.After(*timeout):
		return protocol.PlayerStatus{}
	}
}

// waitOutcome prints the first notice for path, or any notice when path
// is empty
func waitOutcome(c *client.Client, path string) error {
	deadline := time.After(*timeout)
	for {
		select {
		case n := <-c.Notices:
			if path != "" && n.Path != path {
				continue
			}
			fmt.Printf("%s: %s\n", n.Kind, n.Message)
			if n.Level == protocol.LevelError {
				return fmt.Errorf("player reported an error")
			}
			return nil
		case <-deadline:
			return fmt.Errorf("no reply within %v", *timeout)
		}
	}
}

func watch(c *client.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var last protocol.PlayerStatus
	for {
		select {
		case st, ok := <-c.Status:
			if !ok {
				return
			}
			if sameStatus(st, last) {
				continue
			}
			last = st
			printStatus(st)
		case n, ok := <-c.Notices:
			if !ok {
				return
			}
			fmt.Printf("[%s] %s\n", n.Level, n.Message)
		case <-sigChan:
			return
		}
	}
}

// sameStatus ignores the cursor, which moves on every update
func sameStatus(a, b protocol.PlayerStatus) bool {
	if a.Playing != b.Playing || a.Gain != b.Gain || a.GainTarget != b.GainTarget || a.LiveBuffers != b.LiveBuffers {
		return false
	}
	if (a.Buffer == nil) != (b.Buffer == nil) {
		return false
	}
	return a.Buffer == nil || a.Buffer.ID == b.Buffer.ID
}

func printStatus(st protocol.PlayerStatus) {
	if st.SampleRate == 0 {
		fmt.Println("No status received")
		return
	}

	fmt.Printf("mode: %s  device: %d Hz, %d ch  gain: %.2f -> %.2f\n",
		st.Mode, st.SampleRate, st.Channels, st.Gain, st.GainTarget)
	if st.Buffer == nil || !st.Playing {
		fmt.Println("sample: none (silence)")
		return
	}
	b := st.Buffer
	fmt.Printf("sample: %s  %d Hz, %d ch, %d frames  live buffers: %d\n",
		b.Name, b.SampleRate, b.Channels, b.Frames, st.LiveBuffers)
}
