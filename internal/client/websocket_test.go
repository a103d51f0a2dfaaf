// ABOUTME: Tests for WebSocket client implementation
// ABOUTME: Tests construction, message routing and commands without a connection
package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
)

func TestNewClient(t *testing.T) {
	config := Config{
		ServerAddr: "localhost:8928",
		ClientID:   "test-client",
		Name:       "Test Controller",
	}

	client := NewClient(config)
	if client == nil {
		t.Fatal("expected client to be created")
	}

	if client.config.ServerAddr != "localhost:8928" {
		t.Errorf("expected server addr localhost:8928, got %s", client.config.ServerAddr)
	}
	if client.IsConnected() {
		t.Error("new client should not be connected")
	}
}

func TestCommandsRequireConnection(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:1"})

	if err := client.Clear(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := client.SetGain(0.5); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestHandleJSONMessageRoutes(t *testing.T) {
	client := NewClient(Config{})

	status, _ := json.Marshal(protocol.Message{
		Type:    protocol.TypeStatus,
		Payload: protocol.PlayerStatus{SampleRate: 48000, Playing: true},
	})
	notice, _ := json.Marshal(protocol.Message{
		Type:    protocol.TypeNotice,
		Payload: protocol.Notice{Level: protocol.LevelWarning, Kind: "rejected", Message: "too long"},
	})

	client.handleJSONMessage(status)
	client.handleJSONMessage(notice)
	client.handleJSONMessage([]byte("garbage"))

	select {
	case s := <-client.Status:
		if s.SampleRate != 48000 || !s.Playing {
			t.Errorf("unexpected status %+v", s)
		}
	default:
		t.Error("expected status to be routed")
	}

	select {
	case n := <-client.Notices:
		if n.Kind != "rejected" {
			t.Errorf("unexpected notice %+v", n)
		}
	default:
		t.Error("expected notice to be routed")
	}
}

func TestStatusDropsWhenFull(t *testing.T) {
	client := NewClient(Config{})
	data, _ := json.Marshal(protocol.Message{Type: protocol.TypeStatus, Payload: protocol.PlayerStatus{}})

	for i := 0; i < cap(client.Status)+5; i++ {
		client.handleJSONMessage(data)
	}
	if len(client.Status) != cap(client.Status) {
		t.Errorf("expected a full status channel, got %d", len(client.Status))
	}
}
