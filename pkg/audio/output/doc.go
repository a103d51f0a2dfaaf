// ABOUTME: Audio output package for pull-model playback
// ABOUTME: Provides the Output and Renderer interfaces plus device and file backends
// Package output drives a Renderer from an audio device callback.
//
// Backends: oto (default), malgo, PortAudio (build with -tags portaudio),
// and a WAV file writer for headless runs and offline bounces.
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open(48000, 2, engine)
//	defer out.Close()
package output
