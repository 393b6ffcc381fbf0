package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/synthgrid/internal/arena"
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// constNode emits a fixed float and has no inputs.
type constNode struct{ v float32 }

func (n *constNode) Inputs() []node.Input   { return nil }
func (n *constNode) Outputs() []node.Output { return node.FloatOut() }
func (n *constNode) Feed(_ *extern.Inputs, _ []value.Value) []node.Event {
	return nil
}
func (n *constNode) Read(out []value.Value) { out[0] = value.Float(n.v) }
func (n *constNode) Config() any            { return nil }
func (n *constNode) Clone() node.Node       { c := *n; return &c }

// copyNode forwards its input with one step of latency and remembers the
// raw value it was last fed.
type copyNode struct {
	cur     float32
	lastFed value.Value
}

func (n *copyNode) Inputs() []node.Input {
	return []node.Input{{Name: "in", Kind: value.KindFloat}}
}
func (n *copyNode) Outputs() []node.Output { return node.FloatOut() }
func (n *copyNode) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	if len(data) > 0 {
		n.lastFed = data[0]
		f, _ := data[0].AsFloat()
		n.cur = f
	}
	return nil
}
func (n *copyNode) Read(out []value.Value) { out[0] = value.Float(n.cur) }
func (n *copyNode) Config() any            { return nil }
func (n *copyNode) Clone() node.Node       { c := *n; return &c }

// plusOne emits its input plus one.
type plusOne struct{ cur float32 }

func (n *plusOne) Inputs() []node.Input {
	return []node.Input{{Name: "in", Kind: value.KindFloat}}
}
func (n *plusOne) Outputs() []node.Output { return node.FloatOut() }
func (n *plusOne) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	var f float32
	if len(data) > 0 {
		f, _ = data[0].AsFloat()
	}
	n.cur = f + 1
	return nil
}
func (n *plusOne) Read(out []value.Value) { out[0] = value.Float(n.cur) }
func (n *plusOne) Config() any            { return nil }
func (n *plusOne) Clone() node.Node       { c := *n; return &c }

// varArity changes its declared input count and requests resynchronization.
type varArity struct {
	arity int
	want  int
}

func declsFor(n int) []node.Input {
	ins := make([]node.Input, n)
	for i := range ins {
		ins[i] = node.Input{Name: fmt.Sprintf("in %d", i), Kind: value.KindFloat}
	}
	return ins
}

func (n *varArity) Inputs() []node.Input   { return declsFor(n.arity) }
func (n *varArity) Outputs() []node.Output { return node.FloatOut() }
func (n *varArity) Feed(_ *extern.Inputs, _ []value.Value) []node.Event {
	if n.want != n.arity {
		n.arity = n.want
		return []node.Event{node.RecalcInputs{Inputs: declsFor(n.arity)}}
	}
	return nil
}
func (n *varArity) Read(out []value.Value) { out[0] = value.Float(0) }
func (n *varArity) Config() any            { return nil }
func (n *varArity) Clone() node.Node       { c := *n; return &c }

// varOut publishes a configurable number of float outputs, each carrying its
// own port number as the value.
type varOut struct{ outs int }

func (n *varOut) Inputs() []node.Input { return nil }
func (n *varOut) Outputs() []node.Output {
	outs := make([]node.Output, n.outs)
	for i := range outs {
		outs[i] = node.Output{Name: fmt.Sprintf("out %d", i), Kind: value.KindFloat}
	}
	return outs
}
func (n *varOut) Feed(_ *extern.Inputs, _ []value.Value) []node.Event { return nil }
func (n *varOut) Read(out []value.Value) {
	for i := range out {
		out[i] = value.Float(float32(i))
	}
}
func (n *varOut) Config() any      { return nil }
func (n *varOut) Clone() node.Node { c := *n; return &c }

// midiNode emits a MIDI output, for kind-check tests.
type midiNode struct{}

func (n *midiNode) Inputs() []node.Input { return nil }
func (n *midiNode) Outputs() []node.Output {
	return []node.Output{{Name: "out", Kind: value.KindMidi}}
}
func (n *midiNode) Feed(_ *extern.Inputs, _ []value.Value) []node.Event { return nil }
func (n *midiNode) Read(out []value.Value)                              { out[0] = value.None() }
func (n *midiNode) Config() any                                         { return nil }
func (n *midiNode) Clone() node.Node                                    { return &midiNode{} }

func wire(addr arena.Index, port int) *value.OutputPort {
	return &value.OutputPort{Node: addr, Port: port}
}

func TestInsertArityMismatch(t *testing.T) {
	rt := New()
	_, err := rt.Insert([]*value.OutputPort{nil, nil}, &copyNode{})
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestStepFeedsPreviousOutputs(t *testing.T) {
	rt := New()
	src, err := rt.Insert(nil, &constNode{v: 3})
	require.NoError(t, err)
	cp, err := rt.Insert([]*value.OutputPort{wire(src, 0)}, &copyNode{})
	require.NoError(t, err)

	rt.Step()
	// The copy was fed the constant's snapshot from this step...
	f, ok := rt.Peek(value.OutputPort{Node: src, Port: 0}).AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(3), f)
	// ...but its own published output still reflects the step before.
	rt.Step()
	f, ok = rt.Peek(value.OutputPort{Node: cp, Port: 0}).AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(3), f)
}

func TestFeedbackSeesPreStepValues(t *testing.T) {
	rt := New()
	// a -> b -> a: a emits b+1, b copies a.
	a, err := rt.Insert([]*value.OutputPort{nil}, &plusOne{})
	require.NoError(t, err)
	b, err := rt.Insert([]*value.OutputPort{wire(a, 0)}, &copyNode{})
	require.NoError(t, err)
	require.NoError(t, rt.SetInput(a, 0, wire(b, 0)))

	rt.Step()
	// Both were fed the pre-step snapshot (all zeros), regardless of
	// iteration order: b got a's old 0, not the 1 a produced this step.
	bn, _ := rt.nodes.Get(b)
	f, ok := bn.node.(*copyNode).lastFed.AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(0), f)

	rt.Step()
	// The snapshot published by a step holds pre-feed state: a's first 1 is
	// visible now, b still shows its pre-step 0.
	f, ok = rt.Peek(value.OutputPort{Node: a, Port: 0}).AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(1), f)
	f, ok = rt.Peek(value.OutputPort{Node: b, Port: 0}).AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(0), f)

	rt.Step()
	// One step of latency per feedback edge: b now carries a's first 1.
	f, ok = rt.Peek(value.OutputPort{Node: b, Port: 0}).AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(1), f)
}

func TestDisconnectedInputIsDistinguished(t *testing.T) {
	rt := New()
	cp, err := rt.Insert([]*value.OutputPort{nil}, &copyNode{})
	require.NoError(t, err)

	rt.Step()
	cn, _ := rt.nodes.Get(cp)
	assert.True(t, cn.node.(*copyNode).lastFed.IsDisconnected())
}

func TestRemoveClearsDanglingWires(t *testing.T) {
	rt := New()
	src, err := rt.Insert(nil, &constNode{v: 1})
	require.NoError(t, err)
	cp, err := rt.Insert([]*value.OutputPort{wire(src, 0)}, &copyNode{})
	require.NoError(t, err)

	require.NoError(t, rt.Remove(src))

	inputs, ok := rt.Inputs(cp)
	require.True(t, ok)
	require.Len(t, inputs, 1)
	assert.Nil(t, inputs[0], "wire to the removed node must be cleared")

	assert.ErrorIs(t, rt.Remove(src), ErrAddressNotFound)
}

func TestAddressStability(t *testing.T) {
	rt := New()
	var addrs []arena.Index
	for i := 0; i < 4; i++ {
		addr, err := rt.Insert(nil, &constNode{v: float32(i)})
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}

	require.NoError(t, rt.Remove(addrs[1]))
	fresh, err := rt.Insert(nil, &constNode{v: 9})
	require.NoError(t, err)

	for _, old := range addrs {
		assert.NotEqual(t, old, fresh)
	}
	assert.False(t, rt.Contains(addrs[1]))
	assert.True(t, rt.Contains(fresh))
}

func TestSetInputValidation(t *testing.T) {
	rt := New()
	src, err := rt.Insert(nil, &constNode{v: 1})
	require.NoError(t, err)
	cp, err := rt.Insert([]*value.OutputPort{nil}, &copyNode{})
	require.NoError(t, err)
	md, err := rt.Insert(nil, &midiNode{})
	require.NoError(t, err)

	t.Run("stale destination", func(t *testing.T) {
		stale := arena.Index{Slot: 99, Generation: 0}
		assert.ErrorIs(t, rt.SetInput(stale, 0, wire(src, 0)), ErrAddressNotFound)
	})

	t.Run("stale source", func(t *testing.T) {
		ghost, err := rt.Insert(nil, &constNode{})
		require.NoError(t, err)
		require.NoError(t, rt.Remove(ghost))
		assert.ErrorIs(t, rt.SetInput(cp, 0, wire(ghost, 0)), ErrAddressNotFound)
	})

	t.Run("port out of range", func(t *testing.T) {
		assert.ErrorIs(t, rt.SetInput(cp, 5, wire(src, 0)), ErrPortOutOfRange)
		assert.ErrorIs(t, rt.SetInput(cp, 0, wire(src, 3)), ErrPortOutOfRange)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		assert.ErrorIs(t, rt.SetInput(cp, 0, wire(md, 0)), ErrKindMismatch)
	})

	t.Run("disconnect always allowed", func(t *testing.T) {
		require.NoError(t, rt.SetInput(cp, 0, wire(src, 0)))
		require.NoError(t, rt.SetInput(cp, 0, nil))
		inputs, _ := rt.Inputs(cp)
		assert.Nil(t, inputs[0])
	})
}

func TestSetAllInputsArity(t *testing.T) {
	rt := New()
	cp, err := rt.Insert([]*value.OutputPort{nil}, &copyNode{})
	require.NoError(t, err)

	assert.ErrorIs(t, rt.SetAllInputs(cp, []*value.OutputPort{nil, nil}), ErrArityMismatch)
	assert.NoError(t, rt.SetAllInputs(cp, []*value.OutputPort{nil}))
}

func TestRecalcInputsResynchronization(t *testing.T) {
	rt := New()
	src, err := rt.Insert(nil, &constNode{v: 1})
	require.NoError(t, err)

	va := &varArity{arity: 2, want: 2}
	addr, err := rt.Insert([]*value.OutputPort{wire(src, 0), nil}, va)
	require.NoError(t, err)

	// Grow: the wire on "in 0" survives, new slots start disconnected.
	va.want = 4
	evs := rt.Step()
	require.Len(t, evs, 1)
	assert.Equal(t, addr, evs[0].Addr)
	rt.ApplyEvents(evs)

	inputs, ok := rt.Inputs(addr)
	require.True(t, ok)
	require.Len(t, inputs, 4, "slot count matches the node's declaration")
	require.NotNil(t, inputs[0])
	assert.Equal(t, src, inputs[0].Node)
	for _, w := range inputs[1:] {
		assert.Nil(t, w)
	}

	// Shrink back below the wired slot count.
	va.want = 1
	evs = rt.Step()
	require.Len(t, evs, 1)
	rt.ApplyEvents(evs)

	inputs, _ = rt.Inputs(addr)
	require.Len(t, inputs, 1)
	assert.NotNil(t, inputs[0], "named wire survives the shrink")

	// The invariant holds: further steps feed with the declared arity.
	assert.Empty(t, rt.Step())
}

func TestCloneIsIndependentSnapshot(t *testing.T) {
	rt := New()
	src, err := rt.Insert(nil, &constNode{v: 5})
	require.NoError(t, err)
	cp, err := rt.Insert([]*value.OutputPort{wire(src, 0)}, &copyNode{})
	require.NoError(t, err)

	_, err = rt.ExternInputs().Define(extern.TrackAudio, value.KindFloat)
	require.NoError(t, err)
	q, _ := rt.ExternInputs().Get(extern.TrackAudio)
	q.Push(value.Float(1))

	rt.Step()
	rt.Step()

	snap := rt.Clone()

	// Addresses stay valid in the copy and the wiring came along.
	assert.True(t, snap.Contains(src))
	inputs, ok := snap.Inputs(cp)
	require.True(t, ok)
	require.NotNil(t, inputs[0])
	assert.Equal(t, src, inputs[0].Node)

	// Extern definitions carry over, backlogs do not.
	sq, ok := snap.ExternInputs().Get(extern.TrackAudio)
	require.True(t, ok)
	assert.Equal(t, 0, sq.Len())

	// Stepping the snapshot does not disturb the original, and vice versa.
	snap.Step()
	snap.Step()
	require.NoError(t, rt.Remove(src))
	assert.True(t, snap.Contains(src))

	f, okf := snap.Peek(value.OutputPort{Node: cp, Port: 0}).AsFloat()
	require.True(t, okf)
	assert.Equal(t, float32(5), f)
}

func TestShrunkUpstreamOutputReadsNone(t *testing.T) {
	rt := New()
	vo := &varOut{outs: 2}
	src, err := rt.Insert(nil, vo)
	require.NoError(t, err)
	cp, err := rt.Insert([]*value.OutputPort{wire(src, 1)}, &copyNode{})
	require.NoError(t, err)

	rt.Step()
	rt.Step()
	cn, _ := rt.nodes.Get(cp)
	f, ok := cn.node.(*copyNode).lastFed.AsFloat()
	require.True(t, ok)
	assert.Equal(t, float32(1), f)

	// The upstream drops its second output. The wire keeps port 1 and now
	// reads None; the downstream keeps stepping on its no-signal path.
	vo.outs = 1
	rt.Step()
	assert.True(t, cn.node.(*copyNode).lastFed.IsNone())
	assert.True(t, rt.Peek(value.OutputPort{Node: src, Port: 1}).IsNone())
}

func TestPeekStalePortReadsNone(t *testing.T) {
	rt := New()
	ghost := arena.Index{Slot: 42, Generation: 0}
	assert.True(t, rt.Peek(value.OutputPort{Node: ghost, Port: 0}).IsNone())
}
