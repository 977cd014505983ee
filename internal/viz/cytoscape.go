// Package viz renders graph snapshots for Cytoscape.js.
package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/relgraph/internal/graph"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data     CytoscapeNodeData `json:"data"`
	Position graph.Position    `json:"position"`
}

// CytoscapeNodeData contains the node data fields.
type CytoscapeNodeData struct {
	ID         string            `json:"id"`
	Type       graph.Kind        `json:"type"`
	Label      string            `json:"label"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Image      string            `json:"image,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Label        string `json:"label"`
	RelationKind string `json:"relationKind,omitempty"`
	Style        string `json:"style"`
}

// Elements converts a snapshot to Cytoscape.js elements.
func Elements(s graph.Snapshot) CytoscapeElements {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(s.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(s.Edges)),
	}

	for _, n := range s.Nodes {
		elements.Nodes = append(elements.Nodes, CytoscapeNode{
			Data: CytoscapeNodeData{
				ID:         n.ID,
				Type:       n.Kind,
				Label:      n.Name,
				Subtitle:   n.Subtitle,
				Image:      n.ImageURL,
				Attributes: n.Attributes,
			},
			Position: n.Position,
		})
	}

	for _, e := range s.Edges {
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:           e.ID,
				Source:       e.Source,
				Target:       e.Target,
				Label:        e.Label,
				RelationKind: e.RelationKind,
				Style:        e.Style,
			},
		})
	}

	return elements
}

// ToCytoscapeJSON converts a snapshot to Cytoscape.js JSON format.
func ToCytoscapeJSON(s graph.Snapshot) (string, error) {
	jsonBytes, err := json.Marshal(Elements(s))
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
