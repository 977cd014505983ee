// Package layout is the boundary to an external automatic-layout service.
//
// The service is consumed as a pure function from node boxes and links to
// positions. Failure is never fatal: Apply hands back the snapshot it was
// given so fallback positions stay in place.
package layout

import (
	"context"
	"fmt"

	"github.com/matsen/relgraph/internal/graph"
)

// Direction values for Options.Direction.
const (
	DirectionDown  = "DOWN"
	DirectionRight = "RIGHT"
)

// Box is a node as seen by the layout service.
type Box struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Link is an edge as seen by the layout service.
type Link struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Options are passed through to the layout service.
type Options struct {
	Direction    string  `json:"direction"`
	NodeSpacing  float64 `json:"nodeSpacing"`
	LayerSpacing float64 `json:"layerSpacing"`
}

// DefaultOptions returns a top-down layered layout with comfortable spacing.
func DefaultOptions() Options {
	return Options{Direction: DirectionDown, NodeSpacing: 80, LayerSpacing: 100}
}

// Layouter computes positions for boxes connected by links. The returned
// map may omit IDs; those nodes keep their current position.
type Layouter interface {
	Layout(ctx context.Context, boxes []Box, links []Link, opts Options) (map[string]graph.Position, error)
}

// SizeHint returns the rendered size of a node of the given kind.
func SizeHint(kind graph.Kind) (width, height float64) {
	if kind == graph.KindOrganization {
		return 220, 80
	}
	return 180, 70
}

// Apply runs l over s and returns a new snapshot with the positions it
// produced. On error s is returned unchanged together with the error. A nil
// Layouter or an empty snapshot is a no-op.
func Apply(ctx context.Context, l Layouter, s graph.Snapshot, opts Options) (graph.Snapshot, error) {
	if l == nil || s.IsEmpty() {
		return s, nil
	}

	boxes := make([]Box, len(s.Nodes))
	for i, n := range s.Nodes {
		w, h := SizeHint(n.Kind)
		boxes[i] = Box{ID: n.ID, Width: w, Height: h}
	}
	links := make([]Link, len(s.Edges))
	for i, e := range s.Edges {
		links[i] = Link{ID: e.ID, Source: e.Source, Target: e.Target}
	}

	positions, err := l.Layout(ctx, boxes, links, opts)
	if err != nil {
		return s, fmt.Errorf("layout: %w", err)
	}

	out := s.Clone()
	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
	}
	return out, nil
}
