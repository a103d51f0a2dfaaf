// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion functions and decoded block validation
package audio

import (
	"errors"
	"testing"
	"time"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"half positive", 16384, 0.5},
		{"half negative", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"half positive", 0.5, 16384},
		{"half negative", -0.5, -16384},
		{"clip positive", 1.5, Max16Bit},
		{"clip negative", -1.5, Min16Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFromInt(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		bitDepth int
		expected float32
	}{
		{"16-bit half", 16384, 16, 0.5},
		{"24-bit half", 4194304, 24, 0.5},
		{"8-bit min", -128, 8, -1},
		{"unknown depth falls back to 16", 16384, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt(tt.input, tt.bitDepth)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	samples := []int16{0, 100, -100, 1000, -1000, 32767, -32768}

	for _, original := range samples {
		result := SampleToInt16(SampleFromInt16(original))
		if result != original {
			t.Errorf("round-trip failed: %d -> %d", original, result)
		}
	}
}

func TestDecodedDuration(t *testing.T) {
	d := &Decoded{
		Format:  Format{SampleRate: 48000, Channels: 2},
		Frames:  24000,
		Samples: make([]float32, 48000),
	}

	if d.Seconds() != 0.5 {
		t.Errorf("expected 0.5s, got %f", d.Seconds())
	}
	if d.Duration() != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", d.Duration())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("expected valid block, got %v", err)
	}
}

func TestDecodedValidate(t *testing.T) {
	tests := []struct {
		name    string
		decoded Decoded
		want    error
	}{
		{"no channels", Decoded{Format: Format{SampleRate: 44100}}, ErrInvalidFormat},
		{"no sample rate", Decoded{Format: Format{Channels: 1}}, ErrInvalidFormat},
		{"short samples", Decoded{Format: Format{SampleRate: 44100, Channels: 2}, Frames: 4, Samples: make([]float32, 7)}, ErrSampleMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decoded.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodedChannel(t *testing.T) {
	d := &Decoded{
		Format:  Format{SampleRate: 8000, Channels: 2},
		Frames:  3,
		Samples: []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3},
	}

	right := d.Channel(1)
	want := []float32{-0.1, -0.2, -0.3}
	for i := range want {
		if right[i] != want[i] {
			t.Errorf("frame %d: expected %f, got %f", i, want[i], right[i])
		}
	}
}
