// ABOUTME: Remote control message type definitions
// ABOUTME: JSON messages exchanged between loopctl and a running player
package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is bumped on incompatible message changes
const ProtocolVersion = 1

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeLoad        = "player/load"
	TypeClear       = "player/clear"
	TypeGain        = "player/gain"
	TypeStatus      = "player/status"
	TypeNotice      = "player/notice"
)

// Notice levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message whose payload has not been decoded yet
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Parse decodes the outer message wrapper
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("message has no type")
	}
	return env, nil
}

// Decode unmarshals the payload into v
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", e.Type, err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello is the player's response to client/hello
type ServerHello struct {
	ServerID   string   `json:"server_id"`
	Name       string   `json:"name"`
	Version    int      `json:"version"`
	Software   string   `json:"software"`
	SampleRate int      `json:"sample_rate"`
	Channels   int      `json:"channels"`
	Formats    []string `json:"formats"` // file extensions the player can decode
}

// LoadCommand asks the player to load a file from its own filesystem
type LoadCommand struct {
	Path          string `json:"path"`
	MaxDurationMs int    `json:"max_duration_ms,omitempty"`
}

// GainCommand sets the gain target
type GainCommand struct {
	Gain float32 `json:"gain"`
}

// BufferStatus describes the loaded sample
type BufferStatus struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Channels   int    `json:"channels"`
	Frames     int    `json:"frames"`
	SampleRate int    `json:"sample_rate"`
	Cursor     int    `json:"cursor"`
}

// PlayerStatus is broadcast whenever player state changes
type PlayerStatus struct {
	Mode        string        `json:"mode"` // "loop" or "noise"
	SampleRate  int           `json:"sample_rate"`
	Channels    int           `json:"channels"`
	Playing     bool          `json:"playing"`
	Gain        float32       `json:"gain"`
	GainTarget  float32       `json:"gain_target"`
	GainMax     float32       `json:"gain_max"`
	LiveBuffers int           `json:"live_buffers"`
	Buffer      *BufferStatus `json:"buffer,omitempty"`
}

// Notice reports a non-fatal outcome such as a rejected file
type Notice struct {
	Level     string `json:"level"`
	Kind      string `json:"kind"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}
