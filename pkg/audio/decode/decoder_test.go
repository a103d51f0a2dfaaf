// ABOUTME: Tests for the decoder registry
// ABOUTME: Covers extension dispatch, unsupported formats and output validation
package decode

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

type fakeDecoder struct {
	decoded *audio.Decoded
	err     error
	calls   int
}

func (f *fakeDecoder) Decode(path string) (*audio.Decoded, error) {
	f.calls++
	return f.decoded, f.err
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected registry to be created")
	}
	if len(r.Extensions()) != 0 {
		t.Errorf("expected empty registry, got %v", r.Extensions())
	}
}

func TestDefaultRegistryExtensions(t *testing.T) {
	r := DefaultRegistry()

	for _, ext := range []string{".wav", ".wave", ".aif", ".aiff", ".mp3", ".flac", ".ogg", ".opus"} {
		if _, ok := r.Get(ext); !ok {
			t.Errorf("expected decoder for %s", ext)
		}
	}
}

func TestRegistryNormalizesExtension(t *testing.T) {
	tests := []struct {
		registered string
		lookup     string
	}{
		{".WAV", ".wav"},
		{"wav", ".wav"},
		{".wav", ".WaV"},
		{".flac", "flac"},
	}

	for _, tt := range tests {
		t.Run(tt.registered+"->"+tt.lookup, func(t *testing.T) {
			r := NewRegistry()
			r.Register(tt.registered, &fakeDecoder{})
			if _, ok := r.Get(tt.lookup); !ok {
				t.Errorf("lookup %q after registering %q failed", tt.lookup, tt.registered)
			}
		})
	}
}

func TestRegistryDecodeDispatch(t *testing.T) {
	fake := &fakeDecoder{decoded: &audio.Decoded{
		Format:  audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16},
		Frames:  3,
		Samples: []float32{0, 0.5, -0.5},
	}}

	r := NewRegistry()
	r.Register(".raw", fake)

	decoded, err := r.Decode("/tmp/clip.RAW")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 decoder call, got %d", fake.calls)
	}
	if decoded.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", decoded.Frames)
	}
}

func TestRegistryDecodeUnsupported(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Decode("/tmp/notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = r.Decode("/tmp/no-extension")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for missing extension, got %v", err)
	}
}

func TestRegistryDecodePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.Register(".raw", &fakeDecoder{err: boom})

	if _, err := r.Decode("clip.raw"); !errors.Is(err, boom) {
		t.Errorf("expected decoder error, got %v", err)
	}
}

func TestRegistryDecodeRejectsBadOutput(t *testing.T) {
	r := NewRegistry()
	r.Register(".raw", &fakeDecoder{decoded: &audio.Decoded{
		Format:  audio.Format{SampleRate: 48000, Channels: 2},
		Frames:  4,
		Samples: make([]float32, 7),
	}})

	if _, err := r.Decode("clip.raw"); !errors.Is(err, audio.ErrSampleMismatch) {
		t.Errorf("expected ErrSampleMismatch, got %v", err)
	}
}

func TestMissingFiles(t *testing.T) {
	decoders := map[string]Decoder{
		"wav":    WAVDecoder{},
		"aiff":   AIFFDecoder{},
		"mp3":    MP3Decoder{},
		"flac":   FLACDecoder{},
		"vorbis": VorbisDecoder{},
	}

	for name, d := range decoders {
		t.Run(name, func(t *testing.T) {
			if _, err := d.Decode("/nonexistent/clip"); err == nil {
				t.Error("expected error for missing file")
			}
		})
	}
}
