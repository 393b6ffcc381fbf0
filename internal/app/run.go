package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/synthgrid/internal/audio"
	"github.com/vk/synthgrid/internal/ctxlog"
	"github.com/vk/synthgrid/internal/nodes"
	"github.com/vk/synthgrid/internal/patch"
	"github.com/vk/synthgrid/internal/remote"
	"github.com/vk/synthgrid/internal/value"
)

// pollInterval is how often the control thread drains engine responses.
const pollInterval = 100 * time.Millisecond

// Run loads the patch, starts the audio engine and services it until the
// context is cancelled or the configured duration elapses.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.ListenPort > 0 {
		a.startListener(a.cfg.ListenPort)
	}

	p, err := patch.Load(ctx, a.cfg.PatchPath)
	if err != nil {
		return fmt.Errorf("failed to load patch: %w", err)
	}
	a.logger.Debug("Patch loaded.", "nodes", len(p.Nodes), "externs", len(p.Externs))

	rc := remote.Config{
		SampleRate: a.cfg.SampleRate,
		BufferSize: a.cfg.BufferSize,
		LowWater:   time.Duration(a.cfg.LowWaterMs) * time.Millisecond,
		HighWater:  time.Duration(a.cfg.HighWaterMs) * time.Millisecond,
	}

	out, err := audio.OpenPortAudio(rc.ResolvedSampleRate(), rc.ResolvedBufferSize(), rc.QueueCap())
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			a.logger.Warn("Closing audio output failed", "error", err)
		}
	}()

	r := remote.Start(rc, out, a.logger)

	applied, err := p.Apply(r, nodes.Context{SampleRate: rc.ResolvedSampleRate()})
	if err != nil {
		r.Shutdown()
		return fmt.Errorf("failed to apply patch: %w", err)
	}
	a.logger.Info("Patch installed.", "nodes", len(applied.IDs), "play", applied.Play != nil)

	var capturePort *value.OutputPort
	if a.cfg.CaptureWAV != "" {
		if applied.Play == nil {
			a.logger.Warn("Capture requested but the patch has no play block; nothing to record.")
		} else {
			if err := r.Record(applied.Play.Node, applied.Play.Port); err != nil {
				return fmt.Errorf("failed to start capture: %w", err)
			}
			if port, ok := r.OutputPort(applied.Play.Node, applied.Play.Port); ok {
				capturePort = &port
			}
		}
	}

	var stop <-chan time.Time
	if a.cfg.Duration > 0 {
		timer := time.NewTimer(a.cfg.Duration)
		defer timer.Stop()
		stop = timer.C
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var captured []float32
	a.logger.Info("Engine running.", "sample_rate", rc.ResolvedSampleRate(), "buffer_size", rc.ResolvedBufferSize())

loop:
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Shutdown requested.")
			break loop
		case <-stop:
			a.logger.Info("Configured duration elapsed.")
			break loop
		case <-ticker.C:
			captured = a.service(r, capturePort, captured)
			if r.Closed() {
				return fmt.Errorf("audio loop terminated unexpectedly")
			}
		}
	}

	// Blocking shutdown, then one last drain so a short run still captures
	// the tail the loop flushed on its way out.
	r.Shutdown()
	captured = a.service(r, capturePort, captured)

	if a.cfg.CaptureWAV != "" && len(captured) > 0 {
		if err := audio.WriteWAV(a.cfg.CaptureWAV, captured, rc.ResolvedSampleRate()); err != nil {
			return fmt.Errorf("failed to write capture: %w", err)
		}
		a.logger.Info("Capture written.", "path", a.cfg.CaptureWAV, "samples", len(captured))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// service drains the remote's pending responses, logging rejected commands
// and accumulating capture samples.
func (a *App) service(r *remote.Remote, capturePort *value.OutputPort, captured []float32) []float32 {
	r.Poll()

	for _, err := range r.Errors() {
		a.logger.Warn("Engine rejected a command", "error", err)
	}
	for _, evs := range r.Events() {
		a.logger.Debug("Node rewired itself", "addr", evs.Addr, "events", len(evs.Events))
	}

	for port, vals := range r.Recordings() {
		if capturePort != nil && port == *capturePort {
			for _, v := range vals {
				f, _ := v.AsFloat()
				captured = append(captured, f)
			}
			continue
		}
		a.logger.Debug("Tap delivered samples", "port", port, "count", len(vals))
	}
	return captured
}
