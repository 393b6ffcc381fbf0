package nodes

import (
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Gain multiplies its input by a factor. The factor slot falls back to the
// shared parameter when unwired; a disconnected signal input yields silence
// rather than an error, so a graph keeps running mid-rewire.
type Gain struct {
	gain *node.Param
	cur  float32
}

func NewGain(g float32) *Gain {
	return &Gain{gain: node.NewParam(g)}
}

func (g *Gain) Inputs() []node.Input {
	return []node.Input{
		{Name: "in", Kind: value.KindFloat},
		{Name: "gain", Kind: value.KindFloat, Default: g.gain},
	}
}

func (g *Gain) Outputs() []node.Output { return node.FloatOut() }

func (g *Gain) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	in, ok := data[0].AsFloat()
	if !ok {
		g.cur = 0
		return nil
	}
	g.cur = in * g.gain.Resolve(data[1])
	return nil
}

func (g *Gain) Read(out []value.Value) {
	out[0] = value.Float(g.cur)
}

func (g *Gain) Config() any { return g.gain }

func (g *Gain) Clone() node.Node {
	return &Gain{gain: g.gain, cur: g.cur}
}
