// ABOUTME: Decoder interface definition and extension registry
// ABOUTME: Dispatches a file path to the decoder registered for its extension
package decode

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Resonate-Protocol/resonate-loop/pkg/audio"
)

// Decoder turns a file on disk into fully decoded float32 samples
type Decoder interface {
	Decode(path string) (*audio.Decoded, error)
}

// Registry maps file extensions to decoders
type Registry struct {
	codecs map[string]Decoder
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

// DefaultRegistry creates a registry with every built-in format registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".wav", WAVDecoder{})
	r.Register(".wave", WAVDecoder{})
	r.Register(".aif", AIFFDecoder{})
	r.Register(".aiff", AIFFDecoder{})
	r.Register(".mp3", MP3Decoder{})
	r.Register(".flac", FLACDecoder{})
	r.Register(".ogg", VorbisDecoder{})
	r.Register(".opus", OpusDecoder{})
	return r
}

// Register adds or replaces the decoder for an extension
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[normalizeExt(ext)] = d
}

// Get returns the decoder for an extension
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]
	return d, ok
}

// Extensions lists registered extensions in sorted order
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode picks a decoder by the path's extension and validates its output
func (r *Registry) Decode(path string) (*audio.Decoded, error) {
	ext := normalizeExt(filepath.Ext(path))
	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(r.Extensions(), ", "))
	}

	decoded, err := d.Decode(path)
	if err != nil {
		return nil, err
	}
	if err := decoded.Validate(); err != nil {
		return nil, fmt.Errorf("decoder for %s produced bad output: %w", ext, err)
	}
	return decoded, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
