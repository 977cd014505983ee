package assemble

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/graph"
	"github.com/matsen/relgraph/internal/jsonpath"
)

// declaredNode is a node accepted from a graph-shaped batch, before
// placement.
type declaredNode struct {
	decl gjson.Result
	id   string
}

// edgeBuilder accumulates edges for one batch, keeping their IDs unique.
type edgeBuilder struct {
	ids   map[string]string // declared node ID -> assigned node ID
	taken map[string]bool
	edges []graph.Edge
}

func (a *Assembler) assembleGraph(ctx context.Context, input gjson.Result, taken map[string]bool, res *Result) error {
	nodes, _ := jsonpath.Lookup(input, "nodes")

	seen := make(map[string]bool)
	eb := &edgeBuilder{ids: make(map[string]string), taken: make(map[string]bool)}
	var accepted []declaredNode

	for i, decl := range nodes.Array() {
		if !decl.IsObject() {
			res.warn("node %d is not an object, skipping", i)
			continue
		}

		declaredID := scalarText(decl, "id")
		if declaredID != "" && seen[declaredID] {
			res.warn("duplicate node id %q in batch, dropping later declaration", declaredID)
			continue
		}

		base := declaredID
		if base == "" {
			base = a.syntheticID(nodeName(decl))
		}
		id := graph.UniqueID(base, taken)
		taken[id] = true

		if declaredID != "" {
			seen[declaredID] = true
			eb.ids[declaredID] = id
		}
		accepted = append(accepted, declaredNode{decl: decl, id: id})
	}

	for i, dn := range accepted {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Nodes = append(res.Nodes, a.declaredGraphNode(ctx, dn, i, len(accepted), res))
	}

	for _, dn := range accepted {
		conns, _ := jsonpath.Lookup(dn.decl, "connections")
		for _, c := range conns.Array() {
			eb.add(res, dn.id, scalarText(c, "target"), c)
		}
	}

	edges, _ := jsonpath.Lookup(input, "edges")
	for _, e := range edges.Array() {
		if !e.IsObject() {
			res.warn("edge declaration is not an object, skipping")
			continue
		}
		source := scalarText(e, "source")
		if id, ok := eb.ids[source]; ok {
			eb.add(res, id, scalarText(e, "target"), e)
		} else {
			res.warn("dropping edge %q -> %q: source not in batch", source, scalarText(e, "target"))
		}
	}

	res.Edges = eb.edges
	return nil
}

func (a *Assembler) declaredGraphNode(ctx context.Context, dn declaredNode, index, count int, res *Result) graph.Node {
	decl := dn.decl

	typ := jsonpath.String(decl, "type", jsonpath.String(decl, "kind", ""))
	kind, ok := graph.ParseKind(typ)
	if !ok && typ != "" {
		res.warn("node %q has unknown type %q, treating as %s", dn.id, typ, kind)
	}

	name := nodeName(decl)
	if name == "" {
		name = dn.id
	}

	pos, ok := declaredPosition(decl)
	if !ok {
		pos = circlePosition(index, count, a.canvas)
	}

	raw := sourceDocument(decl)

	return graph.Node{
		ID:         dn.id,
		Kind:       kind,
		Position:   pos,
		Name:       name,
		Subtitle:   jsonpath.String(decl, "subtitle", ""),
		ImageURL:   a.resolveImage(ctx, dn.id, jsonpath.String(decl, "image", ""), res),
		Attributes: declaredAttributes(decl),
		Raw:        json.RawMessage(raw),
	}
}

// sourceDocument returns the record a declared node was built from: the
// "raw" member of an exported snapshot node, else a "data" member, else the
// declaration itself.
func sourceDocument(decl gjson.Result) string {
	for _, key := range []string{"raw", "data"} {
		if v, ok := jsonpath.Lookup(decl, key); ok && (v.IsObject() || v.IsArray()) {
			return v.Raw
		}
	}
	return decl.Raw
}

// add resolves one declared edge from an already-assigned source ID to a
// declared target ID.
func (eb *edgeBuilder) add(res *Result, source, declaredTarget string, decl gjson.Result) {
	if !decl.IsObject() {
		res.warn("connection of %q is not an object, skipping", source)
		return
	}
	target, ok := eb.ids[declaredTarget]
	if !ok {
		res.warn("dropping edge %q -> %q: target not in batch", source, declaredTarget)
		return
	}

	label := jsonpath.String(decl, "label", "")
	relationKind := jsonpath.String(decl, "relationKind", jsonpath.String(decl, "relation_kind", ""))
	if label == "" {
		label = relationKind
	}
	styleKey := relationKind
	if styleKey == "" {
		styleKey = label
	}

	id := scalarText(decl, "id")
	if id == "" {
		id = graph.EdgeID(source, target, label, len(eb.edges))
	}
	id = graph.UniqueID(id, eb.taken)
	eb.taken[id] = true

	eb.edges = append(eb.edges, graph.Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		Label:        label,
		RelationKind: relationKind,
		Style:        graph.StyleFor(styleKey),
	})
}

func nodeName(decl gjson.Result) string {
	name := strings.TrimSpace(jsonpath.String(decl, "name", ""))
	if name == "" {
		name = strings.TrimSpace(jsonpath.String(decl, "label", ""))
	}
	return name
}

func declaredPosition(decl gjson.Result) (graph.Position, bool) {
	pos, ok := jsonpath.Lookup(decl, "position")
	if !ok || !pos.IsObject() {
		return graph.Position{}, false
	}
	x, okX := jsonpath.Lookup(pos, "x")
	y, okY := jsonpath.Lookup(pos, "y")
	if !okX || !okY || x.Type != gjson.Number || y.Type != gjson.Number {
		return graph.Position{}, false
	}
	return graph.Position{X: x.Num, Y: y.Num}, true
}

// declaredAttributes keeps scalar attribute values as text and nested values
// as their raw JSON.
func declaredAttributes(decl gjson.Result) map[string]string {
	attrs, ok := jsonpath.Lookup(decl, "attributes")
	if !ok || !attrs.IsObject() {
		return nil
	}
	out := make(map[string]string)
	attrs.ForEach(func(k, v gjson.Result) bool {
		switch v.Type {
		case gjson.Null:
		case gjson.JSON:
			out[k.String()] = v.Raw
		default:
			out[k.String()] = v.String()
		}
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// scalarText returns a string or number member as trimmed text.
func scalarText(obj gjson.Result, key string) string {
	v, ok := jsonpath.Lookup(obj, key)
	if !ok {
		return ""
	}
	switch v.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}
