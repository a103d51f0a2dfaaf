// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Decoded types and sample conversion functions
// Package audio provides fundamental audio types shared by the decoders,
// the resampler, the output backends and the loop engine.
//
// This package defines:
//   - Format: sample rate, channel count and source bit depth
//   - Decoded: a fully decoded block of interleaved float32 samples
//
// Samples are float32 in [-1, 1]. Conversions to and from integer PCM are
// provided for decoders and for the 16-bit WAV writer.
//
// Example:
//
//	d := &audio.Decoded{
//	    Format:  audio.Format{SampleRate: 48000, Channels: 2},
//	    Frames:  len(samples) / 2,
//	    Samples: samples,
//	}
//	if err := d.Validate(); err != nil {
//	    return err
//	}
//	log.Printf("decoded %.2fs", d.Seconds())
package audio
