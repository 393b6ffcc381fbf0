package remote

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/vk/synthgrid/internal/arena"
	"github.com/vk/synthgrid/internal/audio"
	"github.com/vk/synthgrid/internal/engine"
	"github.com/vk/synthgrid/internal/metrics"
	"github.com/vk/synthgrid/internal/value"
)

// loop is the audio-thread side of the remote: the single owner of the
// runtime. It alternates between filling the sink up to the high-water mark
// and applying one pending command, so the runtime is never observed
// mid-step and every mutation lands between fill bursts.
type loop struct {
	cfg    Config
	out    audio.Output
	rt     *engine.Runtime
	req    <-chan Request
	resp   chan<- Response
	logger *slog.Logger

	play *value.OutputPort
	taps map[value.OutputPort][]value.Value
	buf  []float32
}

func (l *loop) run() {
	// The loop owns all audio pacing; pin it to one OS thread so the
	// scheduler cannot migrate it mid-burst.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	// On every exit path: drain the command channel so a blocked sender is
	// released, then close the response channel so the control thread sees
	// the loop is gone.
	defer close(l.resp)
	defer l.discardPending()

	l.logger.Info("audio loop started",
		"sample_rate", l.cfg.SampleRate,
		"buffer_size", l.cfg.BufferSize,
		"low_water", l.cfg.LowWater,
		"high_water", l.cfg.HighWater)

	for {
		if l.queued() < l.cfg.LowWater {
			if !l.fill() {
				l.logger.Warn("audio sink stopped accepting buffers, shutting down")
				return
			}
			l.flushTaps()
		} else {
			time.Sleep(l.cfg.IdleSleep)
		}

		select {
		case req := <-l.req:
			stop := l.apply(req)
			l.resp <- Step{}
			if stop {
				l.flushTaps()
				l.logger.Info("audio loop stopped")
				return
			}
		default:
		}
	}
}

func (l *loop) queued() time.Duration {
	n := l.out.QueueLen()
	metrics.QueuedBuffers.Set(float64(n))
	return time.Duration(n) * l.cfg.bufferDuration()
}

// fill steps the graph one sample at a time until the sink holds HighWater
// worth of audio, writing the selected play port into the output buffer and
// every tapped port into its recording.
func (l *loop) fill() bool {
	for l.queued() < l.cfg.HighWater {
		for i := range l.buf {
			evs := l.rt.Step()
			metrics.Steps.Inc()
			if len(evs) > 0 {
				// Resynchronize wiring before the node is fed again; the
				// control thread only gets the events as bookkeeping.
				l.rt.ApplyEvents(evs)
				l.trySend(NodeEvents{Events: evs})
			}

			var s float32
			if l.play != nil {
				s, _ = l.rt.Peek(*l.play).AsFloat()
			}
			l.buf[i] = s

			for port := range l.taps {
				l.taps[port] = append(l.taps[port], l.rt.Peek(port))
			}
		}
		if !l.out.Feed(l.buf) {
			return false
		}
		metrics.FillBursts.Inc()
	}
	return true
}

func (l *loop) flushTaps() {
	for port, vals := range l.taps {
		if len(vals) == 0 {
			continue
		}
		l.taps[port] = nil
		metrics.TapSamples.Add(float64(len(vals)))
		l.trySend(Samples{Port: port, Values: vals})
	}
}

// trySend delivers advisory responses best-effort: the audio thread must
// never stall on a control thread that has fallen behind.
func (l *loop) trySend(resp Response) {
	select {
	case l.resp <- resp:
	default:
		metrics.DroppedResponses.Inc()
	}
}

func (l *loop) apply(req Request) (stop bool) {
	var err error

	switch req := req.(type) {
	case Insert:
		var addr arena.Index
		addr, err = l.rt.Insert(req.Inputs, req.Node)
		if err == nil {
			l.resp <- Inserted{ID: req.ID, Addr: addr}
		}
	case Remove:
		if err = l.rt.Remove(req.Addr); err == nil {
			for port := range l.taps {
				if port.Node == req.Addr {
					delete(l.taps, port)
				}
			}
			if l.play != nil && l.play.Node == req.Addr {
				l.play = nil
			}
		}
	case SetInput:
		err = l.rt.SetInput(req.Dst, req.Port, req.Src)
	case SetAllInputs:
		err = l.rt.SetAllInputs(req.Dst, req.Inputs)
	case Play:
		if req.Port != nil && !l.rt.Contains(req.Port.Node) {
			err = fmt.Errorf("play %v: %w", *req.Port, engine.ErrAddressNotFound)
		} else {
			l.play = req.Port
		}
	case Record:
		if !l.rt.Contains(req.Port.Node) {
			err = fmt.Errorf("record %v: %w", req.Port, engine.ErrAddressNotFound)
		} else if _, ok := l.taps[req.Port]; !ok {
			l.taps[req.Port] = nil
		}
	case StopRecording:
		delete(l.taps, req.Port)
	case ExternDefine:
		_, err = l.rt.ExternInputs().Define(req.Name, req.Kind)
	case ExternAppend:
		if q, ok := l.rt.ExternInputs().Get(req.Name); ok {
			q.Extend(req.Values)
		} else {
			err = fmt.Errorf("extern input %q not defined", req.Name)
		}
	case CloneRuntime:
		l.resp <- RuntimeCloned{Runtime: l.rt.Clone()}
	case ReplaceRuntime:
		l.rt = req.Runtime
	case Shutdown:
		return true
	}

	if err != nil {
		metrics.CommandsFailed.Inc()
		l.resp <- CommandFailed{Err: err}
	} else {
		metrics.CommandsApplied.Inc()
	}
	return false
}

// discardPending empties the command channel on shutdown so a control
// thread blocked on a full channel is released.
func (l *loop) discardPending() {
	for {
		select {
		case <-l.req:
		default:
			return
		}
	}
}
