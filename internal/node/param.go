package node

import (
	"math"
	"sync/atomic"

	"github.com/vk/synthgrid/internal/value"
)

// Param is a float parameter shared between a node on the audio thread and
// its representation on the control thread. Access goes through a single
// atomic word, so neither side ever blocks the other.
type Param struct {
	bits atomic.Uint32
}

// NewParam returns a shared parameter holding v.
func NewParam(v float32) *Param {
	p := &Param{}
	p.Store(v)
	return p
}

// Load returns the current value.
func (p *Param) Load() float32 {
	return math.Float32frombits(p.bits.Load())
}

// Store replaces the current value.
func (p *Param) Store(v float32) {
	p.bits.Store(math.Float32bits(v))
}

// Resolve returns the float carried by got, or the parameter's own value
// when the input is disconnected or produced nothing this step.
func (p *Param) Resolve(got value.Value) float32 {
	if f, ok := got.AsFloat(); ok {
		return f
	}
	return p.Load()
}
