// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded loops to the output device sample rate
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation and treats its input as a loop, so the last
// output frames blend back into the first input frame.
//
// Example:
//
//	decoded = resample.Convert(decoded, 48000)
package resample
