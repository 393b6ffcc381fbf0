package nodes

import (
	"math"

	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Sine is a sine oscillator. Frequency comes from the wired input when
// present, otherwise from the shared parameter.
type Sine struct {
	freq  *node.Param
	rate  float64
	phase float64
	cur   float32
}

func NewSine(ctx Context, freq float32) *Sine {
	return &Sine{freq: node.NewParam(freq), rate: float64(ctx.SampleRate)}
}

func (s *Sine) Inputs() []node.Input {
	return []node.Input{{Name: "freq", Kind: value.KindFloat, Default: s.freq}}
}

func (s *Sine) Outputs() []node.Output { return node.FloatOut() }

func (s *Sine) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	f := s.freq.Resolve(data[0])
	s.cur = float32(math.Sin(2 * math.Pi * s.phase))
	s.phase += float64(f) / s.rate
	if s.phase >= 1 {
		s.phase -= math.Floor(s.phase)
	}
	return nil
}

func (s *Sine) Read(out []value.Value) {
	out[0] = value.Float(s.cur)
}

func (s *Sine) Config() any { return s.freq }

func (s *Sine) Clone() node.Node {
	return &Sine{freq: s.freq, rate: s.rate, phase: s.phase, cur: s.cur}
}
