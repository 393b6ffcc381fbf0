// Package audio provides the sink the engine's pacing loop feeds, a
// portaudio-backed implementation of it, and the WAV writer used to export
// captured samples.
package audio

// Output is the downstream audio device as seen by the pacing loop. The
// loop fills fixed-size buffers and hands them over with Feed; QueueLen
// reports how many handed-over buffers the device has not consumed yet,
// which the loop converts into a buffered-duration estimate.
type Output interface {
	// QueueLen returns the number of buffers queued but not yet played.
	QueueLen() int
	// Feed queues one buffer of mono samples. It returns false when the
	// sink is no longer accepting audio, which shuts the loop down.
	Feed(samples []float32) bool
	// Start begins playback. The loop pre-fills the queue before calling
	// this so the device never starts on an empty queue.
	Start()
}
