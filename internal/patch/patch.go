// Package patch loads graph descriptions from HCL files and applies them to
// a running engine through its remote handle.
package patch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/synthgrid/internal/ctxlog"
	"github.com/vk/synthgrid/internal/nodes"
)

// Patch is one decoded patch file.
type Patch struct {
	Externs []*ExternBlock `hcl:"extern,block"`
	Nodes   []*NodeBlock   `hcl:"node,block"`
	Play    *PlayBlock     `hcl:"play,block"`
	Records []*RecordBlock `hcl:"record,block"`
}

// NodeBlock instantiates one node: node "<type>" "<name>" { ... }.
type NodeBlock struct {
	Type   string         `hcl:"type,label"`
	Name   string         `hcl:"name,label"`
	Params hcl.Expression `hcl:"params,optional"`
	Inputs []*InputBlock  `hcl:"input,block"`
}

// InputBlock wires one named input slot: input "<name>" { from = "node" }.
// The source may name an output port as "node:2"; port 0 is the default.
type InputBlock struct {
	Name string `hcl:"name,label"`
	From string `hcl:"from"`
}

// ExternBlock declares a host input queue: extern "<name>" { kind = "float" }.
type ExternBlock struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`
}

// PlayBlock selects the output feeding the audio device.
type PlayBlock struct {
	From string `hcl:"from"`
}

// RecordBlock taps an output for capture.
type RecordBlock struct {
	From string `hcl:"from"`
}

// Load parses and decodes one patch file.
func Load(ctx context.Context, path string) (*Patch, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Patch loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing patch %s: %w", path, diags)
	}

	var p Patch
	diags = gohcl.DecodeBody(file.Body, nil, &p)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding patch %s: %w", path, diags)
	}

	seen := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, dup := seen[n.Name]; dup {
			return nil, fmt.Errorf("patch %s: node %q defined twice", path, n.Name)
		}
		seen[n.Name] = struct{}{}
	}

	logger.Debug("Patch decoded.", "nodes", len(p.Nodes), "externs", len(p.Externs), "records", len(p.Records))
	return &p, nil
}

// evalParams turns a params object expression into a builder parameter bag.
// Strings stay strings; everything else must be convertible to a number.
func evalParams(expr hcl.Expression) (nodes.Params, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating params: %w", diags)
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("params must be an object, got %s", v.Type().FriendlyName())
	}

	params := nodes.Params{}
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		name := k.AsString()
		if ev.Type() == cty.String {
			params[name] = ev.AsString()
			continue
		}
		num, err := convert.Convert(ev, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		f, _ := num.AsBigFloat().Float64()
		params[name] = f
	}
	return params, nil
}

// parseRef splits a port reference of the form "name" or "name:port".
func parseRef(ref string) (string, int, error) {
	name, portStr, ok := strings.Cut(ref, ":")
	if !ok {
		return ref, 0, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 {
		return "", 0, fmt.Errorf("bad port reference %q", ref)
	}
	return name, port, nil
}
