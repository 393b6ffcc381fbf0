package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
)

func TestZeroValueIsNone(t *testing.T) {
	var v Value
	assert.Equal(t, KindNone, v.Kind())
	assert.True(t, v.IsNone())
	assert.False(t, v.IsDisconnected())
}

func TestAccessors(t *testing.T) {
	f, ok := Float(1.5).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, float32(1.5), f)

	_, ok = Disconnected().AsFloat()
	assert.False(t, ok)
	assert.True(t, Disconnected().IsDisconnected())

	// A scalar is viewable as a one-element block.
	arr, ok := Float(2).AsFloatArray()
	assert.True(t, ok)
	assert.Equal(t, []float32{2}, arr)

	arr, ok = FloatArray([]float32{1, 2, 3}).AsFloatArray()
	assert.True(t, ok)
	assert.Len(t, arr, 3)

	ev, ok := Midi(3, midi.NoteOn(3, 60, 100)).AsMidi()
	assert.True(t, ok)
	assert.Equal(t, uint8(3), ev.Channel)

	d, ok := Beat(time.Second / 2).AsBeat()
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)

	_, ok = Float(1).AsBeat()
	assert.False(t, ok)
}
