// Package metrics instruments the audio-production loop. Counters are cheap
// enough to bump from the audio goroutine (a single atomic add); anything
// heavier stays out of the hot path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Steps counts graph evaluation steps (one per sample).
	Steps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_steps_total",
		Help: "Graph evaluation steps executed.",
	})

	// FillBursts counts buffers handed to the audio sink.
	FillBursts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_fill_buffers_total",
		Help: "Audio buffers filled and handed to the output sink.",
	})

	// CommandsApplied counts control-thread commands applied to the runtime.
	CommandsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_commands_applied_total",
		Help: "Control commands applied between fill bursts.",
	})

	// CommandsFailed counts commands rejected with a typed error.
	CommandsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_commands_failed_total",
		Help: "Control commands rejected (stale address, arity mismatch, ...).",
	})

	// DroppedResponses counts advisory responses dropped under backpressure.
	DroppedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_dropped_responses_total",
		Help: "Advisory responses (node events, samples) dropped because the control thread fell behind.",
	})

	// TapSamples counts recorded values shipped to the control thread.
	TapSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthgrid_tap_samples_total",
		Help: "Recorded tap values shipped to the control thread.",
	})

	// QueuedBuffers mirrors the sink's queue length at the last pacing check.
	QueuedBuffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "synthgrid_queued_buffers",
		Help: "Sink buffers queued but not yet played, sampled by the pacing loop.",
	})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
