// Package value defines the tagged value that travels along every wire of
// the signal graph, one instance per connection per step, together with the
// kind discriminant used to validate connections at wiring time and the
// output-port address that wires point at.
package value

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vk/synthgrid/internal/arena"
)

// Kind discriminates the variants of Value. Connections are checked against
// kinds when a wire is set; the evaluation loop itself is kind-agnostic and
// forwards whatever a node produces.
type Kind uint8

const (
	// KindNone marks a producer with nothing to say this step. It also acts
	// as the wildcard kind on ports that accept anything.
	KindNone Kind = iota
	// KindDisconnected marks an input slot with no wire attached, so nodes
	// can tell "no signal right now" apart from "no wire at all".
	KindDisconnected
	KindFloat
	KindFloatArray
	KindMidi
	KindBeat
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDisconnected:
		return "disconnected"
	case KindFloat:
		return "float"
	case KindFloatArray:
		return "float-array"
	case KindMidi:
		return "midi"
	case KindBeat:
		return "beat"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MidiEvent is one MIDI message on one channel.
type MidiEvent struct {
	Channel uint8
	Message midi.Message
}

// Value is a small tagged union. The zero Value is None.
type Value struct {
	kind  Kind
	float float32
	array []float32
	midi  MidiEvent
	beat  time.Duration
}

// None is the "nothing produced this step" value.
func None() Value { return Value{} }

// Disconnected is the value fed into an input slot that has no wire.
func Disconnected() Value { return Value{kind: KindDisconnected} }

// Float wraps an audio/control-rate scalar.
func Float(f float32) Value { return Value{kind: KindFloat, float: f} }

// FloatArray wraps a block of samples. The slice is not copied.
func FloatArray(fs []float32) Value { return Value{kind: KindFloatArray, array: fs} }

// Midi wraps a single MIDI message.
func Midi(channel uint8, message midi.Message) Value {
	return Value{kind: KindMidi, midi: MidiEvent{Channel: channel, Message: message}}
}

// Beat wraps a tempo pulse carrying the current beat period.
func Beat(period time.Duration) Value { return Value{kind: KindBeat, beat: period} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether the producer had nothing to say.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsDisconnected reports whether the input slot had no wire attached.
func (v Value) IsDisconnected() bool { return v.kind == KindDisconnected }

// AsFloat returns the scalar payload, if this is a Float.
func (v Value) AsFloat() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.float, true
}

// AsFloatArray returns the block payload. A plain Float is viewable as a
// one-element block.
func (v Value) AsFloatArray() ([]float32, bool) {
	switch v.kind {
	case KindFloat:
		return []float32{v.float}, true
	case KindFloatArray:
		return v.array, true
	default:
		return nil, false
	}
}

// AsMidi returns the MIDI payload, if this is a Midi value.
func (v Value) AsMidi() (MidiEvent, bool) {
	if v.kind != KindMidi {
		return MidiEvent{}, false
	}
	return v.midi, true
}

// AsBeat returns the beat period, if this is a Beat pulse.
func (v Value) AsBeat() (time.Duration, bool) {
	if v.kind != KindBeat {
		return 0, false
	}
	return v.beat, true
}

func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return fmt.Sprintf("Float(%g)", v.float)
	case KindFloatArray:
		return fmt.Sprintf("FloatArray(len=%d)", len(v.array))
	case KindMidi:
		return fmt.Sprintf("Midi(ch=%d, %v)", v.midi.Channel, v.midi.Message)
	case KindBeat:
		return fmt.Sprintf("Beat(%v)", v.beat)
	default:
		return v.kind.String()
	}
}

// OutputPort identifies one output slot of one node: where an input wire's
// value comes from.
type OutputPort struct {
	Node arena.Index
	Port int
}

func (p OutputPort) String() string {
	return fmt.Sprintf("%v:%d", p.Node, p.Port)
}
