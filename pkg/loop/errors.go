// ABOUTME: Error types for the loop core
// ABOUTME: Decode failures and duration rejections are notices; shutdown timeout is fatal
package loop

import (
	"errors"
	"fmt"
)

var (
	ErrDurationExceeded = errors.New("sample exceeds maximum duration")
	ErrShutdownTimeout  = errors.New("loader did not stop within timeout")
	ErrAlreadyStarted   = errors.New("loader already started")
	ErrEmptyPath        = errors.New("load request has no path")
)

// DecodeError reports a file the decoder could not turn into audio
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
