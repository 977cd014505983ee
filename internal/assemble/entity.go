package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/extract"
	"github.com/matsen/relgraph/internal/graph"
)

// Attribute keys set on nodes synthesized from entity documents.
const (
	AttrNationalID  = "nationalId"
	AttrSecondaryID = "secondaryId"
)

// entityNode synthesizes one node from an opaque entity document placed at
// grid slot index. The chosen ID is recorded in taken. It reports false on
// an extraction miss.
func (a *Assembler) entityNode(doc gjson.Result, taken map[string]bool, index int) (graph.Node, bool) {
	ident := a.extractor.Extract(doc)
	if !ident.Recognized() {
		return graph.Node{}, false
	}

	base := ident.NationalID
	if base == extract.NotAvailable {
		base = a.syntheticID(ident.Name)
	}
	id := graph.UniqueID(base, taken)
	taken[id] = true

	attrs := make(map[string]string, len(ident.Facts)+2)
	maps.Copy(attrs, ident.Facts)
	attrs[AttrNationalID] = ident.NationalID
	attrs[AttrSecondaryID] = ident.SecondaryID

	subtitle := ""
	switch {
	case ident.NationalID != extract.NotAvailable:
		subtitle = ident.NationalID
	case ident.SecondaryID != extract.NotAvailable:
		subtitle = ident.SecondaryID
	}

	return graph.Node{
		ID:         id,
		Kind:       ident.Kind,
		Position:   gridPosition(index, a.viewport),
		Name:       ident.Name,
		Subtitle:   subtitle,
		Attributes: attrs,
		Raw:        json.RawMessage(doc.Raw),
	}, true
}

func (a *Assembler) assembleCollection(ctx context.Context, input gjson.Result, taken map[string]bool, res *Result) error {
	start := len(taken)
	for i, doc := range input.Array() {
		if err := ctx.Err(); err != nil {
			return err
		}
		node, ok := a.entityNode(doc, taken, start+len(res.Nodes))
		if !ok {
			res.warn("element %d has no recognizable identity, skipping", i)
			continue
		}
		res.Nodes = append(res.Nodes, node)
	}
	return nil
}

// syntheticID derives an ID from a display name, or from the clock when the
// name yields nothing usable.
func (a *Assembler) syntheticID(name string) string {
	if slug := graph.Slug(name); slug != "" {
		return slug
	}
	return fmt.Sprintf("node-%d", a.now().UnixMilli())
}
