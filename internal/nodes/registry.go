// Package nodes provides the built-in signal-processing units and a
// name-keyed registry through which patches instantiate them.
package nodes

import (
	"fmt"
	"sort"

	"github.com/vk/synthgrid/internal/node"
	"github.com/vk/synthgrid/internal/value"
)

// Context carries the engine-level facts a node needs at construction time.
type Context struct {
	SampleRate int
}

// Params is the bag of construction parameters a patch supplies. Values
// arrive as whatever the patch decoder produced; the accessors normalize.
type Params map[string]any

// Float returns the parameter under name as a float32, or def when absent.
func (p Params) Float(name string, def float32) float32 {
	switch v := p[name].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	default:
		return def
	}
}

// String returns the parameter under name, or def when absent.
func (p Params) String(name, def string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return def
}

// Builder constructs one node type from a parameter bag.
type Builder func(ctx Context, params Params) (node.Node, error)

var builders = map[string]Builder{}

// Register adds a node type to the registry. Registering a taken name
// panics; that is a programming error, not a runtime condition.
func Register(typ string, b Builder) {
	if _, ok := builders[typ]; ok {
		panic(fmt.Sprintf("node type %q registered twice", typ))
	}
	builders[typ] = b
}

// Build instantiates the node type registered under typ.
func Build(ctx Context, typ string, params Params) (node.Node, error) {
	b, ok := builders[typ]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
	return b(ctx, params)
}

// Types lists the registered node types, sorted.
func Types() []string {
	out := make([]string, 0, len(builders))
	for typ := range builders {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// ParseKind maps a patch-level kind name to a value kind.
func ParseKind(s string) (value.Kind, error) {
	switch s {
	case "float":
		return value.KindFloat, nil
	case "float-array":
		return value.KindFloatArray, nil
	case "midi":
		return value.KindMidi, nil
	case "beat":
		return value.KindBeat, nil
	default:
		return value.KindNone, fmt.Errorf("unknown value kind %q", s)
	}
}

func init() {
	Register("constant", func(_ Context, p Params) (node.Node, error) {
		return NewConstant(p.Float("value", 0)), nil
	})
	Register("gain", func(_ Context, p Params) (node.Node, error) {
		return NewGain(p.Float("gain", 1)), nil
	})
	Register("add", func(_ Context, _ Params) (node.Node, error) {
		return NewAdd(), nil
	})
	Register("mix", func(_ Context, _ Params) (node.Node, error) {
		return NewMix(), nil
	})
	Register("sine", func(ctx Context, p Params) (node.Node, error) {
		return NewSine(ctx, p.Float("freq", 440)), nil
	})
	Register("delay", func(ctx Context, p Params) (node.Node, error) {
		return NewDelay(ctx, p.Float("seconds", 0.25))
	})
	Register("metronome", func(ctx Context, p Params) (node.Node, error) {
		return NewMetronome(ctx, p.Float("bpm", 120)), nil
	})
	Register("extern", func(_ Context, p Params) (node.Node, error) {
		kind, err := ParseKind(p.String("kind", "float"))
		if err != nil {
			return nil, err
		}
		name := p.String("name", "")
		if name == "" {
			return nil, fmt.Errorf("extern node needs a %q parameter", "name")
		}
		return NewExternReader(name, kind), nil
	})
	Register("midifreq", func(_ Context, _ Params) (node.Node, error) {
		return NewMidiFreq(), nil
	})
}
