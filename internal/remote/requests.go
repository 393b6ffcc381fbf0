package remote

import (
	"github.com/google/uuid"

	"github.com/vk/synthgrid/internal/arena"
	"github.com/vk/synthgrid/internal/engine"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Request is a command from the control thread to the audio thread. Commands
// are applied strictly between fill bursts, in the order they were sent.
type Request interface {
	request()
}

// Insert adds a node to the graph. The audio thread answers with
// Inserted{ID, Addr} so the control thread learns the address it must use
// for wiring.
type Insert struct {
	ID     uuid.UUID
	Inputs []*value.OutputPort
	Node   node.Node
}

// Remove deletes a node, its taps and, if selected, its play port.
type Remove struct {
	Addr arena.Index
}

// SetInput rewires one input slot; a nil Src disconnects it.
type SetInput struct {
	Dst  arena.Index
	Port int
	Src  *value.OutputPort
}

// SetAllInputs replaces a node's whole wiring.
type SetAllInputs struct {
	Dst    arena.Index
	Inputs []*value.OutputPort
}

// Play selects which output port feeds the physical audio output. A nil
// port selects silence.
type Play struct {
	Port *value.OutputPort
}

// Record starts tapping every value read off Port.
type Record struct {
	Port value.OutputPort
}

// StopRecording removes the tap on Port.
type StopRecording struct {
	Port value.OutputPort
}

// ExternDefine allocates a named extern input queue.
type ExternDefine struct {
	Name string
	Kind value.Kind
}

// ExternAppend pushes host values onto a named extern input queue.
type ExternAppend struct {
	Name   string
	Values []value.Value
}

// CloneRuntime requests a deep snapshot of the graph, answered with
// RuntimeCloned. Audio production is not paused.
type CloneRuntime struct{}

// ReplaceRuntime swaps in a previously cloned runtime wholesale.
type ReplaceRuntime struct {
	Runtime *engine.Runtime
}

// Shutdown terminates the audio loop.
type Shutdown struct{}

func (Insert) request()         {}
func (Remove) request()         {}
func (SetInput) request()       {}
func (SetAllInputs) request()   {}
func (Play) request()           {}
func (Record) request()         {}
func (StopRecording) request()  {}
func (ExternDefine) request()   {}
func (ExternAppend) request()   {}
func (CloneRuntime) request()   {}
func (ReplaceRuntime) request() {}
func (Shutdown) request()       {}

// Response is a message from the audio thread back to the control thread.
type Response interface {
	response()
}

// Inserted acknowledges an Insert with the assigned address.
type Inserted struct {
	ID   uuid.UUID
	Addr arena.Index
}

// NodeEvents carries the events nodes emitted during recent steps. The
// wiring resynchronization they request has already been applied on the
// audio thread; this is bookkeeping for the control side.
type NodeEvents struct {
	Events []engine.NodeEvents
}

// Samples delivers the values accumulated on one tapped port.
type Samples struct {
	Port   value.OutputPort
	Values []value.Value
}

// RuntimeCloned answers CloneRuntime.
type RuntimeCloned struct {
	Runtime *engine.Runtime
}

// CommandFailed reports a rejected command (stale address, arity mismatch)
// back to the control thread instead of silently dropping it.
type CommandFailed struct {
	Err error
}

// Step marks that at least one command-application pass completed, letting
// the control thread synchronize without busy-polling. One Step follows
// every applied command.
type Step struct{}

func (Inserted) response()      {}
func (NodeEvents) response()    {}
func (Samples) response()       {}
func (RuntimeCloned) response() {}
func (CommandFailed) response() {}
func (Step) response()          {}
