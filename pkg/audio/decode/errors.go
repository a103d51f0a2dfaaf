// ABOUTME: Sentinel errors for audio decoders
// ABOUTME: Shared by the registry and every format decoder
package decode

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotWavFile        = errors.New("not a WAV file")
	ErrNotAiffFile       = errors.New("not an AIFF file")
	ErrEmptyStream       = errors.New("stream contains no audio")
)
