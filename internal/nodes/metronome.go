package nodes

import (
	"time"

	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Metronome emits a beat pulse carrying the current beat period, once per
// beat, and nothing in between. The first pulse lands on the first step.
type Metronome struct {
	bpm   *node.Param
	rate  float64
	count int
	cur   value.Value
}

func NewMetronome(ctx Context, bpm float32) *Metronome {
	return &Metronome{bpm: node.NewParam(bpm), rate: float64(ctx.SampleRate)}
}

func (m *Metronome) Inputs() []node.Input {
	return []node.Input{{Name: "bpm", Kind: value.KindFloat, Default: m.bpm}}
}

func (m *Metronome) Outputs() []node.Output {
	return []node.Output{{Name: "out", Kind: value.KindBeat}}
}

func (m *Metronome) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	bpm := float64(m.bpm.Resolve(data[0]))
	if bpm <= 0 {
		bpm = 1
	}
	interval := int(m.rate * 60 / bpm)
	if interval < 1 {
		interval = 1
	}

	if m.count == 0 {
		m.cur = value.Beat(time.Duration(float64(time.Minute) / bpm))
	} else {
		m.cur = value.None()
	}
	m.count++
	if m.count >= interval {
		m.count = 0
	}
	return nil
}

func (m *Metronome) Read(out []value.Value) {
	out[0] = m.cur
}

func (m *Metronome) Config() any { return m.bpm }

func (m *Metronome) Clone() node.Node {
	return &Metronome{bpm: m.bpm, rate: m.rate, count: m.count, cur: m.cur}
}
