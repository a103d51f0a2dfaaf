// ABOUTME: Static configuration for the loop core
// ABOUTME: Defaults for duration ceiling, ramp length, polling and reclamation
package loop

import "time"

// Config is fixed at construction; nothing reloads it at runtime
type Config struct {
	// Files this long or longer are rejected
	MaxDuration time.Duration

	// Gain ramp length in samples
	RampLength int

	// Loader housekeeping cadence when no request wakes it
	PollInterval time.Duration

	// Reference count at which only the pool listing holds a buffer
	ReclaimRefs int32

	GainMin     float32
	GainMax     float32
	InitialGain float32

	// Bound on Loader.Stop
	ShutdownTimeout time.Duration

	// Device rate decoded audio is converted to; 0 keeps the file rate
	OutputSampleRate int

	// Verbose loader and pool logging
	Debug bool
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() Config {
	return Config{
		MaxDuration:     2 * time.Second,
		RampLength:      128,
		PollInterval:    500 * time.Millisecond,
		ReclaimRefs:     1,
		GainMin:         0,
		GainMax:         1,
		InitialGain:     1,
		ShutdownTimeout: 4 * time.Second,
	}
}

// withDefaults fills unset fields. An unset gain range also resets the
// initial gain, so a zero Config behaves like DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.MaxDuration <= 0 {
		c.MaxDuration = def.MaxDuration
	}
	if c.RampLength <= 0 {
		c.RampLength = def.RampLength
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ReclaimRefs <= 0 {
		c.ReclaimRefs = def.ReclaimRefs
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.GainMin == 0 && c.GainMax == 0 {
		c.GainMax = def.GainMax
		if c.InitialGain == 0 {
			c.InitialGain = def.InitialGain
		}
	}
	if c.GainMax < c.GainMin {
		c.GainMin, c.GainMax = c.GainMax, c.GainMin
	}
	if c.OutputSampleRate < 0 {
		c.OutputSampleRate = 0
	}
	return c
}
