package nodes

import (
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Add sums two inputs, treating an unwired or silent side as zero.
type Add struct {
	cur float32
}

func NewAdd() *Add { return &Add{} }

func (a *Add) Inputs() []node.Input {
	return []node.Input{
		{Name: "a", Kind: value.KindFloat},
		{Name: "b", Kind: value.KindFloat},
	}
}

func (a *Add) Outputs() []node.Output { return node.FloatOut() }

func (a *Add) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	var sum float32
	for _, v := range data {
		if f, ok := v.AsFloat(); ok {
			sum += f
		}
	}
	a.cur = sum
	return nil
}

func (a *Add) Read(out []value.Value) {
	out[0] = value.Float(a.cur)
}

func (a *Add) Config() any { return nil }

func (a *Add) Clone() node.Node {
	return &Add{cur: a.cur}
}
