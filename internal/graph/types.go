// Package graph defines the node/edge model exchanged with the rendering
// surface.
package graph

import (
	"encoding/json"
	"maps"
	"slices"
)

// Kind classifies a node.
type Kind string

const (
	KindPerson       Kind = "person"
	KindOrganization Kind = "organization"
)

// ParseKind maps a declared node type onto a Kind. Unrecognized types report
// false and default to person.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPerson, KindOrganization:
		return Kind(s), true
	default:
		return KindPerson, false
	}
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a person or organization in the graph.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"type"`
	Position Position `json:"position"`

	// Display
	Name     string `json:"name"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"image,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`

	// Raw is the full source document, kept for detail views.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Edge is a labeled relationship. Source and Target are node IDs.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Label        string `json:"label"`
	RelationKind string `json:"relationKind,omitempty"`
	Style        string `json:"style"`
}

// Snapshot is a complete graph state. Snapshots are treated as immutable
// values: changes produce a new Snapshot.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty returns a snapshot with no nodes or edges.
func Empty() Snapshot {
	return Snapshot{Nodes: []Node{}, Edges: []Edge{}}
}

// IsEmpty returns true if the snapshot has no nodes.
func (s Snapshot) IsEmpty() bool {
	return len(s.Nodes) == 0
}

// IDs returns the set of node IDs.
func (s Snapshot) IDs() map[string]bool {
	ids := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// EdgeIDs returns the set of edge IDs.
func (s Snapshot) EdgeIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Edges))
	for _, e := range s.Edges {
		ids[e.ID] = true
	}
	return ids
}

// Node returns the node with the given ID.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: slices.Clone(s.Edges),
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	for i, n := range s.Nodes {
		n.Attributes = maps.Clone(n.Attributes)
		n.Raw = slices.Clone(n.Raw)
		out.Nodes[i] = n
	}
	return out
}

// Concat returns a new snapshot holding s followed by other.
func (s Snapshot) Concat(other Snapshot) Snapshot {
	out := s.Clone()
	added := other.Clone()
	out.Nodes = append(out.Nodes, added.Nodes...)
	out.Edges = append(out.Edges, added.Edges...)
	return out
}
