// ABOUTME: WebSocket client for the loop player remote control
// ABOUTME: Handles connection, handshake, commands and status routing
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/resonate-loop/internal/discovery"
	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
)

var ErrNotConnected = errors.New("not connected")

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
}

// Client represents a remote control connection
type Client struct {
	config Config
	conn    *websocket.Conn
	mu      sync.RWMutex
	writeMu sync.Mutex
	hello   protocol.ServerHello

	// Message channels
	Status  chan protocol.PlayerStatus
	Notices chan protocol.Notice

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		Status:  make(chan protocol.PlayerStatus, 8),
		Notices: make(chan protocol.Notice, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: discovery.ControlPath}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID: c.config.ClientID,
		Name:     c.config.Name,
		Version:  protocol.ProtocolVersion,
	}

	if err := c.send(protocol.TypeClientHello, hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	env, err := protocol.Parse(data)
	if err != nil {
		return err
	}
	if env.Type != protocol.TypeServerHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, env.Type)
	}

	var serverHello protocol.ServerHello
	if err := env.Decode(&serverHello); err != nil {
		return err
	}

	c.mu.Lock()
	c.hello = serverHello
	c.mu.Unlock()

	log.Printf("Handshake complete with %s (%s)", serverHello.Name, serverHello.Software)
	return nil
}

// ServerHello returns what the player reported during the handshake
func (c *Client) ServerHello() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// send writes a JSON message
func (c *Client) send(msgType string, payload interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(protocol.Message{Type: msgType, Payload: payload})
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes JSON messages. Status updates are dropped
// when nobody is reading; the next one supersedes them anyway.
func (c *Client) handleJSONMessage(data []byte) {
	env, err := protocol.Parse(data)
	if err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch env.Type {
	case protocol.TypeStatus:
		var status protocol.PlayerStatus
		if err := env.Decode(&status); err != nil {
			log.Printf("Bad status: %v", err)
			return
		}
		select {
		case c.Status <- status:
		default:
		}

	case protocol.TypeNotice:
		var notice protocol.Notice
		if err := env.Decode(&notice); err != nil {
			log.Printf("Bad notice: %v", err)
			return
		}
		select {
		case c.Notices <- notice:
		case <-c.ctx.Done():
		}

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

// Load asks the player to load a file from its filesystem
func (c *Client) Load(path string, maxDuration time.Duration) error {
	return c.send(protocol.TypeLoad, protocol.LoadCommand{
		Path:          path,
		MaxDurationMs: int(maxDuration / time.Millisecond),
	})
}

// Clear silences the player
func (c *Client) Clear() error {
	return c.send(protocol.TypeClear, struct{}{})
}

// SetGain sets the player's gain target
func (c *Client) SetGain(gain float32) error {
	return c.send(protocol.TypeGain, protocol.GainCommand{Gain: gain})
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
