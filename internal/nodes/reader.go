package nodes

import (
	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// ExternReader surfaces a named host input queue as a graph output. When
// the queue has nothing this step, or is not defined yet, the reader
// produces nothing.
type ExternReader struct {
	name string
	kind value.Kind
	cur  value.Value
}

func NewExternReader(name string, kind value.Kind) *ExternReader {
	return &ExternReader{name: name, kind: kind}
}

func (r *ExternReader) Inputs() []node.Input { return nil }

func (r *ExternReader) Outputs() []node.Output {
	return []node.Output{{Name: "out", Kind: r.kind}}
}

func (r *ExternReader) Feed(ext *extern.Inputs, _ []value.Value) []node.Event {
	r.cur = value.None()
	if q, ok := ext.Get(r.name); ok {
		if v, ok := q.Read(); ok {
			r.cur = v
		}
	}
	return nil
}

func (r *ExternReader) Read(out []value.Value) {
	out[0] = r.cur
}

func (r *ExternReader) Config() any { return nil }

func (r *ExternReader) Clone() node.Node {
	return &ExternReader{name: r.name, kind: r.kind, cur: r.cur}
}
