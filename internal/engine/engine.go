// Package engine implements the graph execution runtime: a generational
// store of signal nodes, a per-slot output cache, and the per-sample
// evaluation step. One Runtime is owned and mutated by exactly one
// goroutine; the concurrency boundary around it lives in internal/remote.
package engine

import (
	"fmt"

	"github.com/vk/synthgrid/internal/arena"
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

type entry struct {
	// inputs holds one wire per input slot; nil means disconnected.
	inputs []*value.OutputPort
	// names are the input names as of the last synchronization, used to
	// carry wires across RecalcInputs.
	names []string
	node  node.Node
}

func newEntry(inputs []*value.OutputPort, n node.Node) entry {
	decls := n.Inputs()
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return entry{inputs: inputs, names: names, node: n}
}

func (e *entry) clone() entry {
	c := entry{
		inputs: make([]*value.OutputPort, len(e.inputs)),
		names:  append([]string(nil), e.names...),
		node:   e.node.Clone(),
	}
	for i, w := range e.inputs {
		if w != nil {
			wc := *w
			c.inputs[i] = &wc
		}
	}
	return c
}

// NodeEvents pairs a node address with the events its Feed returned.
type NodeEvents struct {
	Addr   arena.Index
	Events []node.Event
}

// Runtime owns the graph store, the per-node output cache and the extern
// input registry, and evaluates the graph one sample per Step.
type Runtime struct {
	nodes *arena.Arena[entry]
	// values is the step-local output snapshot, indexed by arena slot.
	values [][]value.Value
	ext    *extern.Inputs
	// buf is the reusable input gather buffer for the feed pass.
	buf []value.Value
}

// New returns an empty runtime.
func New() *Runtime {
	return &Runtime{
		nodes: arena.New[entry](),
		ext:   extern.NewInputs(),
	}
}

// ExternInputs returns the runtime's extern input registry.
func (rt *Runtime) ExternInputs() *extern.Inputs {
	return rt.ext
}

// Insert adds a node with the given initial wiring and returns its address.
// The wiring must have exactly one slot per declared input.
func (rt *Runtime) Insert(inputs []*value.OutputPort, n node.Node) (arena.Index, error) {
	if got, want := len(inputs), len(n.Inputs()); got != want {
		return arena.Index{}, fmt.Errorf("insert: %d wires for %d inputs: %w", got, want, ErrArityMismatch)
	}
	return rt.nodes.Insert(newEntry(inputs, n)), nil
}

// Remove deletes the node at addr and clears every wire elsewhere in the
// graph that pointed at one of its outputs.
func (rt *Runtime) Remove(addr arena.Index) error {
	if !rt.nodes.Remove(addr) {
		return fmt.Errorf("remove %v: %w", addr, ErrAddressNotFound)
	}
	rt.nodes.Each(func(_ arena.Index, e *entry) bool {
		for i, w := range e.inputs {
			if w != nil && w.Node == addr {
				e.inputs[i] = nil
			}
		}
		return true
	})
	return nil
}

// SetInput wires one input slot of the node at addr to src, or disconnects
// it when src is nil. Kinds are checked here, at wiring time; the evaluation
// loop forwards values unchecked.
func (rt *Runtime) SetInput(addr arena.Index, port int, src *value.OutputPort) error {
	e, ok := rt.nodes.Get(addr)
	if !ok {
		return fmt.Errorf("set input on %v: %w", addr, ErrAddressNotFound)
	}
	if port < 0 || port >= len(e.inputs) {
		return fmt.Errorf("set input %v port %d of %d: %w", addr, port, len(e.inputs), ErrPortOutOfRange)
	}
	if src != nil {
		if err := rt.checkWire(e, port, *src); err != nil {
			return err
		}
	}
	e.inputs[port] = src
	return nil
}

// SetAllInputs replaces the node's whole wiring. The new wiring must match
// the node's current arity.
func (rt *Runtime) SetAllInputs(addr arena.Index, inputs []*value.OutputPort) error {
	e, ok := rt.nodes.Get(addr)
	if !ok {
		return fmt.Errorf("set inputs on %v: %w", addr, ErrAddressNotFound)
	}
	if got, want := len(inputs), len(e.inputs); got != want {
		return fmt.Errorf("set inputs on %v: %d wires for %d inputs: %w", addr, got, want, ErrArityMismatch)
	}
	for i, w := range inputs {
		if w == nil {
			continue
		}
		if err := rt.checkWire(e, i, *w); err != nil {
			return err
		}
	}
	e.inputs = inputs
	return nil
}

func (rt *Runtime) checkWire(dst *entry, port int, src value.OutputPort) error {
	se, ok := rt.nodes.Get(src.Node)
	if !ok {
		return fmt.Errorf("wire from %v: %w", src, ErrAddressNotFound)
	}
	outs := se.node.Outputs()
	if src.Port < 0 || src.Port >= len(outs) {
		return fmt.Errorf("wire from %v: node has %d outputs: %w", src, len(outs), ErrPortOutOfRange)
	}
	ins := dst.node.Inputs()
	if port >= len(ins) {
		// Arity shrank since the wiring snapshot; the slot will go away on
		// the next resynchronization, accept the wire meanwhile.
		return nil
	}
	sk, dk := outs[src.Port].Kind, ins[port].Kind
	if sk != dk && sk != value.KindNone && dk != value.KindNone {
		return fmt.Errorf("wire %v (%v) into %q (%v): %w", src, sk, ins[port].Name, dk, ErrKindMismatch)
	}
	return nil
}

// Step evaluates the whole graph for one sample: first every node's outputs
// are snapshotted into the cache, then every node is fed from that snapshot,
// then the extern queues advance. Because feeds only ever see the snapshot,
// every node observes a single consistent logical time and feedback edges
// carry a uniform one-step latency.
func (rt *Runtime) Step() []NodeEvents {
	var evs []NodeEvents

	rt.nodes.Each(func(idx arena.Index, e *entry) bool {
		slot := int(idx.Slot)
		for len(rt.values) <= slot {
			rt.values = append(rt.values, nil)
		}
		if n := len(e.node.Outputs()); len(rt.values[slot]) != n {
			rt.values[slot] = make([]value.Value, n)
		}
		e.node.Read(rt.values[slot])
		return true
	})

	rt.nodes.Each(func(idx arena.Index, e *entry) bool {
		rt.buf = rt.buf[:0]
		for _, w := range e.inputs {
			rt.buf = append(rt.buf, rt.resolve(w))
		}
		if got := e.node.Feed(rt.ext, rt.buf); len(got) > 0 {
			evs = append(evs, NodeEvents{Addr: idx, Events: got})
		}
		return true
	})

	rt.ext.Step()
	return evs
}

func (rt *Runtime) resolve(w *value.OutputPort) value.Value {
	if w == nil {
		return value.Disconnected()
	}
	slot := int(w.Node.Slot)
	if slot >= len(rt.values) || w.Port >= len(rt.values[slot]) {
		return value.None()
	}
	return rt.values[slot][w.Port]
}

// Peek reads one output from the current snapshot without advancing
// anything. Stale or never-filled ports read as None.
func (rt *Runtime) Peek(port value.OutputPort) value.Value {
	slot := int(port.Node.Slot)
	if slot >= len(rt.values) || port.Port < 0 || port.Port >= len(rt.values[slot]) {
		return value.None()
	}
	return rt.values[slot][port.Port]
}

// ApplyEvents performs the wiring resynchronization requested by nodes
// during the last Step. For RecalcInputs, wires whose input names persist
// are carried over, new slots start disconnected, and the slot count is
// brought back in line with the node's declaration, restoring the arity
// invariant before the node can be fed again.
//
// Output layouts are not resynchronized: a carried-over wire keeps the
// source port it was recorded with, and if the upstream node has since
// dropped that port the wire reads None until it is rewired.
func (rt *Runtime) ApplyEvents(evs []NodeEvents) {
	for _, ne := range evs {
		e, ok := rt.nodes.Get(ne.Addr)
		if !ok {
			continue
		}
		for _, ev := range ne.Events {
			rec, ok := ev.(node.RecalcInputs)
			if !ok {
				continue
			}
			old := make(map[string]*value.OutputPort, len(e.names))
			for i, name := range e.names {
				if i < len(e.inputs) {
					old[name] = e.inputs[i]
				}
			}
			inputs := make([]*value.OutputPort, len(rec.Inputs))
			names := make([]string, len(rec.Inputs))
			for i, in := range rec.Inputs {
				names[i] = in.Name
				inputs[i] = old[in.Name]
			}
			e.inputs = inputs
			e.names = names
		}
	}
}

// Contains reports whether addr names a live node.
func (rt *Runtime) Contains(addr arena.Index) bool {
	return rt.nodes.Contains(addr)
}

// Len returns the number of live nodes.
func (rt *Runtime) Len() int {
	return rt.nodes.Len()
}

// Inputs returns the current wiring of the node at addr.
func (rt *Runtime) Inputs(addr arena.Index) ([]*value.OutputPort, bool) {
	e, ok := rt.nodes.Get(addr)
	if !ok {
		return nil, false
	}
	return e.inputs, true
}

// Each visits every live node in slot order.
func (rt *Runtime) Each(f func(arena.Index, node.Node) bool) {
	rt.nodes.Each(func(idx arena.Index, e *entry) bool {
		return f(idx, e.node)
	})
}

// Clone takes a deep copy of the graph store: node state and wiring are
// copied, addresses stay valid in the copy, shared config handles are
// carried over, and the extern registry keeps its definitions but none of
// the host backlog. The output cache starts empty; it refills on the first
// Step. Clone is a snapshot, not a running alias.
func (rt *Runtime) Clone() *Runtime {
	return &Runtime{
		nodes: rt.nodes.Clone(func(e *entry) entry { return e.clone() }),
		ext:   rt.ext.Clone(),
	}
}
