package nodes

import (
	"fmt"

	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Mix sums any number of inputs. It keeps one spare slot at the end: when
// the spare gets wired, the node grows by one slot and asks the engine to
// resynchronize; when the two trailing slots both lose their wires, it
// shrinks back. Existing wires survive arity changes because slot names are
// stable.
type Mix struct {
	arity int
	cur   float32
}

func NewMix() *Mix { return &Mix{arity: 2} }

func (m *Mix) Inputs() []node.Input {
	return mixInputs(m.arity)
}

func mixInputs(n int) []node.Input {
	ins := make([]node.Input, n)
	for i := range ins {
		ins[i] = node.Input{Name: fmt.Sprintf("in %d", i), Kind: value.KindFloat}
	}
	return ins
}

func (m *Mix) Outputs() []node.Output { return node.FloatOut() }

func (m *Mix) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	var sum float32
	for _, v := range data {
		if f, ok := v.AsFloat(); ok {
			sum += f
		}
	}
	m.cur = sum

	// data may lag a pending arity change by a step; resize decisions only
	// make sense against the shape we actually declared.
	if len(data) != m.arity {
		return nil
	}
	if !data[len(data)-1].IsDisconnected() {
		m.arity++
		return []node.Event{node.RecalcInputs{Inputs: mixInputs(m.arity)}}
	}
	if m.arity > 2 && data[len(data)-2].IsDisconnected() {
		m.arity--
		return []node.Event{node.RecalcInputs{Inputs: mixInputs(m.arity)}}
	}
	return nil
}

func (m *Mix) Read(out []value.Value) {
	out[0] = value.Float(m.cur)
}

func (m *Mix) Config() any { return nil }

func (m *Mix) Clone() node.Node {
	return &Mix{arity: m.arity, cur: m.cur}
}
