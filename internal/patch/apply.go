package patch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/synthgrid/internal/nodes"
	"github.com/vk/synthgrid/internal/remote"
)

// Ref is a patch-level port address: a node id plus an output port.
type Ref struct {
	Node uuid.UUID
	Port int
}

// Applied reports what a patch installed into the engine.
type Applied struct {
	// IDs maps patch node names to the ids the remote knows them under.
	IDs map[string]uuid.UUID
	// Play is the selected play port, if the patch has a play block.
	Play *Ref
	// Records lists the ports the patch taps.
	Records []Ref
}

// Apply installs the patch into a running engine: externs first, then all
// nodes, then the wiring, taps and play selection. Commands that the audio
// thread rejects surface later through the remote's error drain; Apply only
// fails on errors detectable on the control side.
func (p *Patch) Apply(r *remote.Remote, ctx nodes.Context) (*Applied, error) {
	for _, e := range p.Externs {
		kind, err := nodes.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("extern %q: %w", e.Name, err)
		}
		r.DefineExtern(e.Name, kind)
	}

	applied := &Applied{IDs: make(map[string]uuid.UUID, len(p.Nodes))}

	// First pass: build and insert every node, remembering the input-slot
	// names declared at build time so wiring can address slots by name.
	slotNames := make(map[string][]string, len(p.Nodes))
	for _, nb := range p.Nodes {
		params, err := evalParams(nb.Params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nb.Name, err)
		}
		n, err := nodes.Build(ctx, nb.Type, params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nb.Name, err)
		}
		names := make([]string, 0, len(n.Inputs()))
		for _, in := range n.Inputs() {
			names = append(names, in.Name)
		}
		slotNames[nb.Name] = names
		applied.IDs[nb.Name] = r.Insert(n)
	}
	r.Wait()

	// Second pass: wiring, now that every node has an address.
	for _, nb := range p.Nodes {
		for _, in := range nb.Inputs {
			port, err := slotIndex(slotNames[nb.Name], in.Name)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nb.Name, err)
			}
			src, err := p.resolveRef(applied.IDs, in.From)
			if err != nil {
				return nil, fmt.Errorf("node %q input %q: %w", nb.Name, in.Name, err)
			}
			if err := r.Connect(src.Node, src.Port, applied.IDs[nb.Name], port); err != nil {
				return nil, fmt.Errorf("node %q input %q: %w", nb.Name, in.Name, err)
			}
		}
	}

	for _, rec := range p.Records {
		ref, err := p.resolveRef(applied.IDs, rec.From)
		if err != nil {
			return nil, fmt.Errorf("record: %w", err)
		}
		if err := r.Record(ref.Node, ref.Port); err != nil {
			return nil, fmt.Errorf("record: %w", err)
		}
		applied.Records = append(applied.Records, ref)
	}

	if p.Play != nil {
		ref, err := p.resolveRef(applied.IDs, p.Play.From)
		if err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
		if err := r.Play(ref.Node, ref.Port); err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
		applied.Play = &ref
	}

	return applied, nil
}

func (p *Patch) resolveRef(ids map[string]uuid.UUID, ref string) (Ref, error) {
	name, port, err := parseRef(ref)
	if err != nil {
		return Ref{}, err
	}
	id, ok := ids[name]
	if !ok {
		return Ref{}, fmt.Errorf("reference to undefined node %q", name)
	}
	return Ref{Node: id, Port: port}, nil
}

func slotIndex(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no input slot named %q", name)
}
