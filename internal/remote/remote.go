// Package remote runs the graph engine on a dedicated audio goroutine and
// exposes an asynchronous command/response protocol to a control thread.
//
// Exactly two long-lived threads touch the engine's world: the audio
// goroutine owns the runtime outright, and the control thread only ever
// sends commands and receives value-copied responses. Nothing crosses the
// boundary by shared memory, and the audio side never blocks except for a
// short calibrated sleep when it is ahead of the device.
package remote

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vk/synthgrid/internal/arena"
	"github.com/vk/synthgrid/internal/audio"
	"github.com/vk/synthgrid/internal/engine"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// ErrUnknownNode is returned for a node id this remote never inserted (or
// already removed).
var ErrUnknownNode = errors.New("unknown node id")

// Remote is the control-thread handle to a running audio loop.
//
// A Remote is owned by a single goroutine; its methods must not be called
// concurrently. Nodes handed to Insert belong to the audio thread from that
// point on and must not be touched again except through shared config
// handles. After Shutdown the remote must not be used.
type Remote struct {
	tx chan Request
	rx chan Response

	// pending counts commands sent but not yet acknowledged by a Step.
	pending int
	closed  bool

	addrs map[uuid.UUID]arena.Index
	ids   map[arena.Index]uuid.UUID

	events     []engine.NodeEvents
	recordings map[value.OutputPort][]value.Value
	snapshot   *engine.Runtime
	errs       []error
}

// Start pre-fills the sink with silence, starts playback and launches the
// audio loop on its own goroutine.
func Start(cfg Config, out audio.Output, logger *slog.Logger) *Remote {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	tx := make(chan Request, cfg.CommandBuffer)
	rx := make(chan Response, cfg.ResponseBuffer)

	silence := make([]float32, cfg.BufferSize)
	for time.Duration(out.QueueLen())*cfg.bufferDuration() < startupFill {
		if !out.Feed(silence) {
			break
		}
	}
	out.Start()

	l := &loop{
		cfg:    cfg,
		out:    out,
		rt:     engine.New(),
		req:    tx,
		resp:   rx,
		logger: logger,
		taps:   make(map[value.OutputPort][]value.Value),
		buf:    make([]float32, cfg.BufferSize),
	}
	go l.run()

	return &Remote{
		tx:         tx,
		rx:         rx,
		addrs:      make(map[uuid.UUID]arena.Index),
		ids:        make(map[arena.Index]uuid.UUID),
		recordings: make(map[value.OutputPort][]value.Value),
	}
}

// send hands a command to the audio thread and tracks its acknowledgment.
func (r *Remote) send(req Request) {
	r.tx <- req
	r.pending++
}

// Insert sends a node to the audio thread with all inputs disconnected and
// returns the id under which its address will be registered. Call Wait
// before wiring against the new node.
func (r *Remote) Insert(n node.Node) uuid.UUID {
	id := uuid.New()
	r.send(Insert{ID: id, Inputs: make([]*value.OutputPort, len(n.Inputs())), Node: n})
	return id
}

// Remove deletes the node known under id.
func (r *Remote) Remove(id uuid.UUID) error {
	addr, ok := r.addrs[id]
	if !ok {
		return ErrUnknownNode
	}
	delete(r.addrs, id)
	delete(r.ids, addr)
	r.send(Remove{Addr: addr})
	return nil
}

// Connect wires output srcPort of src into input dstPort of dst.
func (r *Remote) Connect(src uuid.UUID, srcPort int, dst uuid.UUID, dstPort int) error {
	srcAddr, ok := r.addrs[src]
	if !ok {
		return ErrUnknownNode
	}
	dstAddr, ok := r.addrs[dst]
	if !ok {
		return ErrUnknownNode
	}
	r.send(SetInput{
		Dst:  dstAddr,
		Port: dstPort,
		Src:  &value.OutputPort{Node: srcAddr, Port: srcPort},
	})
	return nil
}

// Disconnect clears input port of dst.
func (r *Remote) Disconnect(dst uuid.UUID, port int) error {
	addr, ok := r.addrs[dst]
	if !ok {
		return ErrUnknownNode
	}
	r.send(SetInput{Dst: addr, Port: port})
	return nil
}

// SetAllInputs replaces the whole wiring of dst.
func (r *Remote) SetAllInputs(dst uuid.UUID, inputs []*value.OutputPort) error {
	addr, ok := r.addrs[dst]
	if !ok {
		return ErrUnknownNode
	}
	r.send(SetAllInputs{Dst: addr, Inputs: inputs})
	return nil
}

// Play selects output port of id as the signal feeding the audio device.
func (r *Remote) Play(id uuid.UUID, port int) error {
	addr, ok := r.addrs[id]
	if !ok {
		return ErrUnknownNode
	}
	r.send(Play{Port: &value.OutputPort{Node: addr, Port: port}})
	return nil
}

// PlayNone selects silence.
func (r *Remote) PlayNone() {
	r.send(Play{})
}

// Record starts tapping output port of id.
func (r *Remote) Record(id uuid.UUID, port int) error {
	addr, ok := r.addrs[id]
	if !ok {
		return ErrUnknownNode
	}
	r.send(Record{Port: value.OutputPort{Node: addr, Port: port}})
	return nil
}

// StopRecording removes the tap on output port of id.
func (r *Remote) StopRecording(id uuid.UUID, port int) error {
	addr, ok := r.addrs[id]
	if !ok {
		return ErrUnknownNode
	}
	r.send(StopRecording{Port: value.OutputPort{Node: addr, Port: port}})
	return nil
}

// DefineExtern allocates a named extern input queue on the audio thread.
func (r *Remote) DefineExtern(name string, kind value.Kind) {
	r.send(ExternDefine{Name: name, Kind: kind})
}

// AppendExtern pushes host values onto a named extern input queue.
func (r *Remote) AppendExtern(name string, values []value.Value) {
	r.send(ExternAppend{Name: name, Values: values})
}

// Snapshot takes a deep copy of the running graph without interrupting
// audio production. It blocks until the copy arrives; nil is returned only
// if the loop shut down first.
func (r *Remote) Snapshot() *engine.Runtime {
	r.send(CloneRuntime{})
	r.Wait()
	s := r.snapshot
	r.snapshot = nil
	return s
}

// Replace swaps in a previously snapshotted runtime. mapping re-establishes
// the id-to-address table for the restored graph (addresses survive
// cloning, so a mapping saved alongside the snapshot stays valid).
func (r *Remote) Replace(rt *engine.Runtime, mapping map[uuid.UUID]arena.Index) {
	r.addrs = make(map[uuid.UUID]arena.Index, len(mapping))
	r.ids = make(map[arena.Index]uuid.UUID, len(mapping))
	for id, addr := range mapping {
		r.addrs[id] = addr
		r.ids[addr] = id
	}
	r.send(ReplaceRuntime{Runtime: rt})
}

// Shutdown stops the audio loop after the commands already queued, then
// blocks until it has terminated.
func (r *Remote) Shutdown() {
	r.send(Shutdown{})
	for !r.closed {
		resp, ok := <-r.rx
		if !ok {
			r.closed = true
			break
		}
		r.process(resp)
	}
}

// Wait blocks until every command sent so far has been applied, then drains
// any buffered responses. Call it around operations that must observe their
// own effect, such as wiring against a freshly inserted node.
func (r *Remote) Wait() {
	for r.pending > 0 && !r.closed {
		resp, ok := <-r.rx
		if !ok {
			r.closed = true
			break
		}
		r.process(resp)
	}
	r.Poll()
}

// Poll drains buffered responses without blocking.
func (r *Remote) Poll() {
	for {
		select {
		case resp, ok := <-r.rx:
			if !ok {
				r.closed = true
				return
			}
			r.process(resp)
		default:
			return
		}
	}
}

func (r *Remote) process(resp Response) {
	switch resp := resp.(type) {
	case Inserted:
		r.addrs[resp.ID] = resp.Addr
		r.ids[resp.Addr] = resp.ID
	case NodeEvents:
		r.events = append(r.events, resp.Events...)
	case Samples:
		r.recordings[resp.Port] = append(r.recordings[resp.Port], resp.Values...)
	case RuntimeCloned:
		r.snapshot = resp.Runtime
	case CommandFailed:
		r.errs = append(r.errs, resp.Err)
	case Step:
		if r.pending > 0 {
			r.pending--
		}
	}
}

// Address returns the graph address assigned to id, once its Inserted
// acknowledgment has been processed.
func (r *Remote) Address(id uuid.UUID) (arena.Index, bool) {
	addr, ok := r.addrs[id]
	return addr, ok
}

// ID returns the node id that owns addr.
func (r *Remote) ID(addr arena.Index) (uuid.UUID, bool) {
	id, ok := r.ids[addr]
	return id, ok
}

// OutputPort builds the port address for output port of id.
func (r *Remote) OutputPort(id uuid.UUID, port int) (value.OutputPort, bool) {
	addr, ok := r.addrs[id]
	if !ok {
		return value.OutputPort{}, false
	}
	return value.OutputPort{Node: addr, Port: port}, true
}

// Events takes the node events accumulated since the last call.
func (r *Remote) Events() []engine.NodeEvents {
	evs := r.events
	r.events = nil
	return evs
}

// Recordings takes the tap samples accumulated since the last call.
func (r *Remote) Recordings() map[value.OutputPort][]value.Value {
	if len(r.recordings) == 0 {
		return nil
	}
	recs := r.recordings
	r.recordings = make(map[value.OutputPort][]value.Value)
	return recs
}

// Errors takes the command failures reported since the last call.
func (r *Remote) Errors() []error {
	errs := r.errs
	r.errs = nil
	return errs
}

// Closed reports whether the audio loop has terminated.
func (r *Remote) Closed() bool {
	return r.closed
}
