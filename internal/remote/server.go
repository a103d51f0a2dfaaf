// ABOUTME: WebSocket remote control server for a running player
// ABOUTME: Accepts load/clear/gain commands and broadcasts status and notices
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/resonate-loop/internal/discovery"
	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
	"github.com/Resonate-Protocol/resonate-loop/internal/version"
	"github.com/Resonate-Protocol/resonate-loop/pkg/loop"
)

const (
	// TypeError reports a rejected handshake
	TypeError = "server/error"

	statusInterval = 250 * time.Millisecond
	writeDeadline  = 10 * time.Second
	helloTimeout   = 5 * time.Second
)

// Controller is the player surface remote clients drive
type Controller interface {
	Load(req loop.LoadRequest)
	RequestClear()
	SetGainTarget(v float32)
	Status() protocol.PlayerStatus
	Formats() []string
}

// Config holds server configuration
type Config struct {
	Port  int
	Name  string
	Debug bool
}

// Server serves the control websocket
type Server struct {
	config   Config
	serverID string
	ctrl     Controller

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*Client
	clientsMu sync.RWMutex

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected controller
type Client struct {
	ID       string
	Name     string
	Conn     *websocket.Conn
	sendChan chan interface{}
}

// New creates a new server instance
func New(config Config, ctrl Controller) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		ctrl:     ctrl,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser clients send no Origin
				origin := r.Header.Get("Origin")
				if origin == "" || origin == "http://localhost" || origin == "http://127.0.0.1" {
					return true
				}
				log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(discovery.ControlPath, s.handleWebSocket)
	return s
}

// Handler exposes the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured port and serves in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Handler: s.mux}
	log.Printf("Remote control listening on %s%s (ID: %s)", addr, discovery.ControlPath, s.serverID)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Remote control server error: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.statusLoop()
	}()

	return nil
}

// Stop shuts the server down
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.shutdownMu.Lock()
		s.isShutdown = true
		s.shutdownMu.Unlock()

		close(s.stopChan)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}
		}

		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.Conn.Close()
		}
		s.clientsMu.RUnlock()

		s.wg.Wait()
		log.Printf("Remote control stopped")
	})
}

// ClientCount returns the number of connected controllers
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// BroadcastStatus sends the current status to every client
func (s *Server) BroadcastStatus() {
	s.broadcast(protocol.TypeStatus, s.ctrl.Status())
}

// BroadcastNotice sends a notice to every client
func (s *Server) BroadcastNotice(n protocol.Notice) {
	s.broadcast(protocol.TypeNotice, n)
}

func (s *Server) broadcast(msgType string, payload interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendMessage(c, msgType, payload); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropping %s for %s: %v", msgType, c.Name, err)
		}
	}
}

func (s *Server) statusLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if s.ClientCount() > 0 {
				s.BroadcastStatus()
			}
		}
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	if s.config.Debug {
		log.Printf("[DEBUG] New WebSocket connection from %s", r.RemoteAddr)
	}
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	hello, err := readHello(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		return
	}

	log.Printf("Controller hello: %s (ID: %s)", hello.Name, hello.ClientID)

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan interface{}, 32),
	}

	s.clientsMu.Lock()
	if existing, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", hello.ClientID, existing.Name)

		errorMsg := protocol.Message{
			Type: TypeError,
			Payload: map[string]string{
				"error":   "duplicate_client_id",
				"message": "Client ID already connected",
			},
		}
		if data, err := json.Marshal(errorMsg); err == nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		log.Printf("Controller disconnected: %s", client.Name)
	}()

	status := s.ctrl.Status()
	serverHello := protocol.ServerHello{
		ServerID:   s.serverID,
		Name:       s.config.Name,
		Version:    protocol.ProtocolVersion,
		Software:   version.Product + " " + version.Version,
		SampleRate: status.SampleRate,
		Channels:   status.Channels,
		Formats:    s.ctrl.Formats(),
	}
	if err := s.sendMessage(client, protocol.TypeServerHello, serverHello); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}
	s.sendMessage(client, protocol.TypeStatus, status)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		s.handleClientMessage(client, data)
	}
}

func readHello(conn *websocket.Conn) (protocol.ClientHello, error) {
	var hello protocol.ClientHello

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("error reading hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	env, err := protocol.Parse(data)
	if err != nil {
		return hello, err
	}
	if env.Type != protocol.TypeClientHello {
		return hello, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, env.Type)
	}
	if err := env.Decode(&hello); err != nil {
		return hello, err
	}

	if hello.ClientID == "" {
		return hello, fmt.Errorf("client hello missing client_id")
	}
	if hello.Name == "" {
		return hello, fmt.Errorf("client hello missing name")
	}
	return hello, nil
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing text message: %v", err)
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes commands from controllers
func (s *Server) handleClientMessage(client *Client, data []byte) {
	env, err := protocol.Parse(data)
	if err != nil {
		log.Printf("Error parsing message from %s: %v", client.Name, err)
		return
	}

	switch env.Type {
	case protocol.TypeLoad:
		var cmd protocol.LoadCommand
		if err := env.Decode(&cmd); err != nil {
			s.sendNotice(client, protocol.LevelError, "invalid_command", err.Error())
			return
		}
		if cmd.Path == "" {
			s.sendNotice(client, protocol.LevelError, "invalid_command", "load needs a path")
			return
		}

		req := loop.NewLoadRequest(cmd.Path)
		req.MaxDuration = time.Duration(cmd.MaxDurationMs) * time.Millisecond
		log.Printf("Remote load from %s: %s", client.Name, cmd.Path)
		s.ctrl.Load(req)

	case protocol.TypeClear:
		log.Printf("Remote clear from %s", client.Name)
		s.ctrl.RequestClear()

	case protocol.TypeGain:
		var cmd protocol.GainCommand
		if err := env.Decode(&cmd); err != nil {
			s.sendNotice(client, protocol.LevelError, "invalid_command", err.Error())
			return
		}
		s.ctrl.SetGainTarget(cmd.Gain)

	default:
		log.Printf("Unknown message type: %s", env.Type)
		s.sendNotice(client, protocol.LevelWarning, "unknown_type", "unknown message type "+env.Type)
		return
	}

	s.BroadcastStatus()
}

func (s *Server) sendNotice(client *Client, level, kind, message string) {
	s.sendMessage(client, protocol.TypeNotice, protocol.Notice{
		Level:   level,
		Kind:    kind,
		Message: message,
	})
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}
