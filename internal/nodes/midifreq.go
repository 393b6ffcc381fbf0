package nodes

import (
	"math"

	"github.com/vk/synthgrid/internal/extern"
	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// MidiFreq turns note messages into an oscillator frequency and a gate.
// Note-on retunes and opens the gate; note-off for the sounding key closes
// it. The frequency output holds its last value so a release tail keeps its
// pitch.
type MidiFreq struct {
	freq float32
	gate float32
	key  uint8
}

func NewMidiFreq() *MidiFreq { return &MidiFreq{} }

func (m *MidiFreq) Inputs() []node.Input {
	return []node.Input{{Name: "in", Kind: value.KindMidi}}
}

func (m *MidiFreq) Outputs() []node.Output {
	return []node.Output{
		{Name: "freq", Kind: value.KindFloat},
		{Name: "gate", Kind: value.KindFloat},
	}
}

func (m *MidiFreq) Feed(_ *extern.Inputs, data []value.Value) []node.Event {
	ev, ok := data[0].AsMidi()
	if !ok {
		return nil
	}
	var ch, key, vel uint8
	switch {
	case ev.Message.GetNoteStart(&ch, &key, &vel):
		m.key = key
		m.freq = noteFreq(key)
		m.gate = 1
	case ev.Message.GetNoteEnd(&ch, &key):
		if key == m.key {
			m.gate = 0
		}
	}
	return nil
}

// noteFreq is twelve-tone equal temperament around A4 = 440 Hz.
func noteFreq(key uint8) float32 {
	return float32(440 * math.Pow(2, (float64(key)-69)/12))
}

func (m *MidiFreq) Read(out []value.Value) {
	out[0] = value.Float(m.freq)
	out[1] = value.Float(m.gate)
}

func (m *MidiFreq) Config() any { return nil }

func (m *MidiFreq) Clone() node.Node {
	return &MidiFreq{freq: m.freq, gate: m.gate, key: m.key}
}
