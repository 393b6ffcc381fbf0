package nodes

import (
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Constant emits a fixed float every step. The level is a shared parameter,
// so a control surface can retune it while the graph runs.
type Constant struct {
	level *node.Param
	cur   float32
}

func NewConstant(v float32) *Constant {
	return &Constant{level: node.NewParam(v), cur: v}
}

func (c *Constant) Inputs() []node.Input   { return nil }
func (c *Constant) Outputs() []node.Output { return node.FloatOut() }

func (c *Constant) Feed(_ *extern.Inputs, _ []value.Value) []node.Event {
	c.cur = c.level.Load()
	return nil
}

func (c *Constant) Read(out []value.Value) {
	out[0] = value.Float(c.cur)
}

func (c *Constant) Config() any { return c.level }

func (c *Constant) Clone() node.Node {
	return &Constant{level: c.level, cur: c.cur}
}
