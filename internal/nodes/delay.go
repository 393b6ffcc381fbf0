package nodes

import (
	"fmt"

	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Delay replays its input a fixed number of samples later, through a ring
// buffer sized at construction.
type Delay struct {
	buf []float32
	pos int
	cur float32
}

func NewDelay(ctx Context, seconds float32) (*Delay, error) {
	n := int(seconds * float32(ctx.SampleRate))
	if n < 1 {
		return nil, fmt.Errorf("delay of %gs is shorter than one sample at %d Hz", seconds, ctx.SampleRate)
	}
	return &Delay{buf: make([]float32, n)}, nil
}

func (d *Delay) Inputs() []node.Input {
	return []node.Input{{Name: "in", Kind: value.KindFloat}}
}

func (d *Delay) Outputs() []node.Output { return node.FloatOut() }

func (d *Delay) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	in, _ := data[0].AsFloat()
	d.cur = d.buf[d.pos]
	d.buf[d.pos] = in
	d.pos = (d.pos + 1) % len(d.buf)
	return nil
}

func (d *Delay) Read(out []value.Value) {
	out[0] = value.Float(d.cur)
}

func (d *Delay) Config() any { return nil }

func (d *Delay) Clone() node.Node {
	buf := make([]float32, len(d.buf))
	copy(buf, d.buf)
	return &Delay{buf: buf, pos: d.pos, cur: d.cur}
}
