// ABOUTME: Audio decoder package for whole-file sample loading
// ABOUTME: Provides the Decoder interface, a registry, and WAV/AIFF/MP3/FLAC/Vorbis/Opus decoders
// Package decode turns short audio files into fully decoded float32 blocks.
//
// Supports: WAV, AIFF, MP3, FLAC, Ogg Vorbis, Ogg Opus
//
// Every decoder reads the whole file; callers are expected to run them off
// the real-time audio path. The Registry dispatches by file extension and
// validates the decoder output.
//
// Example:
//
//	reg := decode.DefaultRegistry()
//	decoded, err := reg.Decode("/samples/kick.wav")
//	if errors.Is(err, decode.ErrUnsupportedFormat) {
//	    // unknown extension
//	}
package decode
