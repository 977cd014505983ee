package assemble

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/jsonpath"
)

// Shape is the structural classification of an input document.
type Shape int

const (
	// ShapeEntity is a single opaque record that needs identity extraction.
	ShapeEntity Shape = iota
	// ShapeGraph is a document that declares its own nodes (and possibly edges).
	ShapeGraph
	// ShapeCollection is a top-level array of entity records.
	ShapeCollection
)

func (s Shape) String() string {
	switch s {
	case ShapeGraph:
		return "graph"
	case ShapeCollection:
		return "collection"
	default:
		return "entity"
	}
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a shape name written by MarshalText.
func (s *Shape) UnmarshalText(text []byte) error {
	switch string(text) {
	case "entity":
		*s = ShapeEntity
	case "graph":
		*s = ShapeGraph
	case "collection":
		*s = ShapeCollection
	default:
		return fmt.Errorf("unknown shape %q", text)
	}
	return nil
}

// Classify decides how input should be assembled. It is the only place that
// inspects the outer structure of a document.
func Classify(input gjson.Result) Shape {
	if input.IsObject() {
		if nodes, ok := jsonpath.Lookup(input, "nodes"); ok && nodes.IsArray() {
			return ShapeGraph
		}
		return ShapeEntity
	}

	if input.IsArray() {
		elems := input.Array()
		if len(elems) == 0 {
			return ShapeEntity
		}
		for _, e := range elems {
			if !e.IsObject() {
				return ShapeEntity
			}
		}
		return ShapeCollection
	}

	return ShapeEntity
}
