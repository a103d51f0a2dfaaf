// ABOUTME: Tests for remote control message parsing
// ABOUTME: Covers envelope parsing and typed payload decoding
package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseAndDecode(t *testing.T) {
	data, err := json.Marshal(Message{
		Type:    TypeLoad,
		Payload: LoadCommand{Path: "/samples/kick.wav", MaxDurationMs: 1500},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.Type != TypeLoad {
		t.Errorf("expected %s, got %s", TypeLoad, env.Type)
	}

	var cmd LoadCommand
	if err := env.Decode(&cmd); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cmd.Path != "/samples/kick.wav" || cmd.MaxDurationMs != 1500 {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"missing type", `{"payload":{}}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	env, err := Parse([]byte(`{"type":"player/clear","payload":null}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var v struct{}
	if err := env.Decode(&v); err != nil {
		t.Errorf("expected empty payload to decode, got %v", err)
	}
}

func TestDecodeWrongShape(t *testing.T) {
	env, err := Parse([]byte(`{"type":"player/gain","payload":{"gain":"loud"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var cmd GainCommand
	if err := env.Decode(&cmd); err == nil {
		t.Error("expected decode error for string gain")
	}
}
