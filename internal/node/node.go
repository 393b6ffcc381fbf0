// Package node defines the contract between the graph engine and the
// signal-processing units it evaluates. Implementations live elsewhere
// (internal/nodes, host plugins); the engine consumes them only through the
// Node interface.
package node

import (
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/value"
)

// Input declares one input slot of a node.
type Input struct {
	// Name identifies the slot across arity changes: when a node requests
	// input recalculation, existing wires are carried over by name.
	Name string
	// Kind is checked against the upstream output's kind at wiring time.
	Kind value.Kind
	// Default, when non-nil, is a shared handle consulted by the node when
	// the slot is disconnected. The same handle may be held by a UI on the
	// control thread; Param is safe for that.
	Default *Param
}

// Output declares one output slot of a node.
type Output struct {
	Name string
	Kind value.Kind
}

// FloatOut is the conventional single float output declaration.
func FloatOut() []Output {
	return []Output{{Name: "out", Kind: value.KindFloat}}
}

// Event is something a node asks of the engine after being fed.
type Event interface {
	nodeEvent()
}

// RecalcInputs asks the engine to resynchronize the node's wiring after its
// declared input list changed. Wires whose input names persist are kept;
// new slots start disconnected. The engine applies this before the node is
// fed again.
type RecalcInputs struct {
	Inputs []Input
}

func (RecalcInputs) nodeEvent() {}

// Node is one unit of signal processing, advanced one sample at a time.
//
// Implementations must tolerate Disconnected and None input values by
// falling back to internal defaults, and must not panic on unexpected input
// shapes: a node may be fed while the control thread is still rewiring
// around it.
type Node interface {
	// Inputs declares the current arity, names and kinds of the input
	// slots. It may change between calls; a node whose arity changed must
	// emit RecalcInputs from Feed before relying on the new shape.
	Inputs() []Input

	// Outputs declares the arity, names and kinds of the output slots.
	Outputs() []Output

	// Feed advances internal state by exactly one sample. data holds one
	// resolved value per input slot as of the previous Inputs declaration.
	// ext gives access to host-provided streams by name.
	Feed(ext *extern.Inputs, data []value.Value) []Event

	// Read writes the outputs computed by the last Feed into out, without
	// mutating state. out has one slot per declared output. Read is called
	// before any Feed within a step, so every node observes every other
	// node's previous-step outputs.
	Read(out []value.Value)

	// Config returns an optional shared handle to externally mutable
	// configuration (for example a *Param), or nil. Handles returned here
	// may be touched from the control thread and must synchronize
	// internally.
	Config() any

	// Clone returns a deep copy of the node's signal state for graph
	// snapshots. Shared config handles are carried over, not copied, so a
	// snapshot keeps responding to the same knobs.
	Clone() Node
}
