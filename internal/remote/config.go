package remote

import "time"

// Config tunes the audio-production loop. The zero value gets sensible
// defaults from withDefaults; the water marks in particular were tuned
// against real devices and only need touching for tests or unusual sinks.
type Config struct {
	// SampleRate in Hz. Default 44100.
	SampleRate int
	// BufferSize is the number of samples per sink buffer. Default 512.
	BufferSize int
	// LowWater triggers a fill burst: whenever the sink holds less than
	// this much buffered audio, the loop steps the graph until HighWater
	// is reached. Default 80ms.
	LowWater time.Duration
	// HighWater is the fill target. Between fills the loop idles and
	// applies commands. Default 100ms.
	HighWater time.Duration
	// IdleSleep is how long the loop sleeps when ahead of the device.
	// Default 10ms.
	IdleSleep time.Duration
	// CommandBuffer and ResponseBuffer size the two channels crossing the
	// thread boundary. Defaults 64 and 256. Both are bounded: a control
	// thread that pipelines more than CommandBuffer commands without ever
	// draining responses can block against an audio thread itself blocked
	// on a full response channel. Interleave Wait or Poll into long
	// command bursts.
	CommandBuffer  int
	ResponseBuffer int
}

// startupFill is how much silence is queued before the device starts, so
// playback never begins against an empty queue.
const startupFill = 10 * time.Millisecond

func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = 44100
	}
	if c.BufferSize == 0 {
		c.BufferSize = 512
	}
	if c.LowWater == 0 {
		c.LowWater = 80 * time.Millisecond
	}
	if c.HighWater == 0 {
		c.HighWater = 100 * time.Millisecond
	}
	if c.IdleSleep == 0 {
		c.IdleSleep = 10 * time.Millisecond
	}
	if c.CommandBuffer == 0 {
		c.CommandBuffer = 64
	}
	if c.ResponseBuffer == 0 {
		c.ResponseBuffer = 256
	}
	return c
}

// bufferDuration is the playback time covered by one sink buffer.
func (c Config) bufferDuration() time.Duration {
	return time.Duration(c.BufferSize) * time.Second / time.Duration(c.SampleRate)
}

// ResolvedSampleRate returns the sample rate after defaulting, for callers
// that size things around the config before Start applies it.
func (c Config) ResolvedSampleRate() int { return c.withDefaults().SampleRate }

// ResolvedBufferSize returns the buffer size after defaulting.
func (c Config) ResolvedBufferSize() int { return c.withDefaults().BufferSize }

// QueueCap is how many device buffers a sink must be able to hold for this
// pacing: the high-water mark plus headroom.
func (c Config) QueueCap() int {
	c = c.withDefaults()
	return int(c.HighWater/c.bufferDuration()) + 4
}
