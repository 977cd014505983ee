// Package assemble converts input documents into graph nodes and edges.
//
// Graph-shaped documents declare their nodes and edges explicitly; anything
// else is treated as a record describing one entity whose identity is
// recovered heuristically. The assembler never fails on malformed content:
// duplicates and dangling references are dropped with a warning, and a
// document with nothing recognizable yields no node.
package assemble

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/extract"
	"github.com/matsen/relgraph/internal/graph"
	"github.com/matsen/relgraph/internal/logger"
)

// ImageUploader stores image bytes for a node and returns a URL for them.
type ImageUploader interface {
	Upload(ctx context.Context, nodeID, filename string, body []byte) (string, error)
}

// Options configures an Assembler. Zero values fall back to defaults.
type Options struct {
	Extractor *extract.Extractor
	// Uploader receives inline (data: URI) node images. Optional.
	Uploader ImageUploader
	// Now stamps synthetic node IDs.
	Now      func() time.Time
	Viewport Viewport
	Canvas   Canvas
}

// Result is the output of one assembly pass.
type Result struct {
	Shape    Shape        `json:"shape"`
	Nodes    []graph.Node `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
	Warnings []string     `json:"warnings,omitempty"`
	// Miss is set when no recognizable entity was found.
	Miss bool `json:"miss"`
}

// Snapshot returns the result as a standalone snapshot.
func (r Result) Snapshot() graph.Snapshot {
	s := graph.Snapshot{Nodes: r.Nodes, Edges: r.Edges}
	if s.Nodes == nil {
		s.Nodes = []graph.Node{}
	}
	if s.Edges == nil {
		s.Edges = []graph.Edge{}
	}
	return s
}

func (r *Result) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg, "shape", r.Shape.String())
}

// Assembler builds graph fragments from documents.
type Assembler struct {
	extractor *extract.Extractor
	uploader  ImageUploader
	now       func() time.Time
	viewport  Viewport
	canvas    Canvas
}

// New creates an Assembler.
func New(opts Options) *Assembler {
	a := &Assembler{
		extractor: opts.Extractor,
		uploader:  opts.Uploader,
		now:       opts.Now,
		viewport:  opts.Viewport,
		canvas:    opts.Canvas,
	}
	if a.extractor == nil {
		a.extractor = extract.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.viewport == (Viewport{}) {
		a.viewport = DefaultViewport()
	}
	if a.canvas == (Canvas{}) {
		a.canvas = DefaultCanvas()
	}
	return a
}

// Assemble converts input into nodes and edges. Node IDs in existing are
// treated as taken; colliding IDs are suffixed. existing is not modified.
// The only error returned is cancellation of ctx.
func (a *Assembler) Assemble(ctx context.Context, input gjson.Result, existing map[string]bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	taken := maps.Clone(existing)
	if taken == nil {
		taken = make(map[string]bool)
	}

	res := Result{Shape: Classify(input)}
	var err error
	switch res.Shape {
	case ShapeGraph:
		err = a.assembleGraph(ctx, input, taken, &res)
	case ShapeCollection:
		err = a.assembleCollection(ctx, input, taken, &res)
	default:
		if node, ok := a.entityNode(input, taken, len(taken)); ok {
			res.Nodes = append(res.Nodes, node)
		}
	}
	if err != nil {
		return Result{}, err
	}

	res.Miss = len(res.Nodes) == 0 && res.Shape != ShapeGraph
	if res.Nodes == nil {
		res.Nodes = []graph.Node{}
	}
	if res.Edges == nil {
		res.Edges = []graph.Edge{}
	}
	return res, nil
}

// Overwrite assembles input into a fresh snapshot that replaces whatever was
// there before.
func (a *Assembler) Overwrite(ctx context.Context, input gjson.Result) (graph.Snapshot, Result, error) {
	res, err := a.Assemble(ctx, input, nil)
	if err != nil {
		return graph.Snapshot{}, Result{}, err
	}
	return res.Snapshot(), res, nil
}

// Merge assembles input against current and appends the result. Only edges
// declared in input are added; no links between old and new nodes are
// inferred. current is not modified.
func (a *Assembler) Merge(ctx context.Context, current graph.Snapshot, input gjson.Result) (graph.Snapshot, Result, error) {
	res, err := a.Assemble(ctx, input, current.IDs())
	if err != nil {
		return graph.Snapshot{}, Result{}, err
	}

	takenEdges := current.EdgeIDs()
	for i := range res.Edges {
		id := graph.UniqueID(res.Edges[i].ID, takenEdges)
		takenEdges[id] = true
		res.Edges[i].ID = id
	}

	return current.Concat(res.Snapshot()), res, nil
}
