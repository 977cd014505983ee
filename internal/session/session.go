// Package session holds the graph snapshot shown to users and applies
// ingestion events to it.
//
// A snapshot is never edited in place. Every change assembles a complete new
// snapshot and publishes it in one step, so readers see either the old graph
// or the new one.
package session

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/assemble"
	"github.com/matsen/relgraph/internal/document"
	"github.com/matsen/relgraph/internal/flatten"
	"github.com/matsen/relgraph/internal/graph"
	"github.com/matsen/relgraph/internal/imagestore"
	"github.com/matsen/relgraph/internal/layout"
	"github.com/matsen/relgraph/internal/logger"
)

//go:embed sample.json
var sampleGraph []byte

// Sample returns the bundled sample graph document.
func Sample() []byte {
	return append([]byte(nil), sampleGraph...)
}

var (
	// ErrNodeNotFound is returned when a node ID is not in the snapshot.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoUploader is returned by AttachImage when no image store is
	// configured.
	ErrNoUploader = errors.New("no image store configured")

	// ErrInvalidMode is returned by ParseMode.
	ErrInvalidMode = errors.New("invalid ingest mode")
)

// Mode selects how an ingested document combines with the current snapshot.
type Mode string

const (
	// ModeOverwrite replaces the snapshot.
	ModeOverwrite Mode = "overwrite"
	// ModeMerge appends to the snapshot.
	ModeMerge Mode = "merge"
)

// ParseMode parses a mode name. The empty string means overwrite.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeOverwrite:
		return ModeOverwrite, nil
	case ModeMerge:
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: merge, overwrite)", ErrInvalidMode, s)
	}
}

// Report describes the outcome of one ingestion.
type Report struct {
	Mode          Mode           `json:"mode"`
	Shape         assemble.Shape `json:"shape"`
	NodesAdded    int            `json:"nodesAdded"`
	EdgesAdded    int            `json:"edgesAdded"`
	TotalNodes    int            `json:"totalNodes"`
	TotalEdges    int            `json:"totalEdges"`
	Miss          bool           `json:"miss"`
	LayoutApplied bool           `json:"layoutApplied"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// Options configures a Session.
type Options struct {
	Assembler     *assemble.Assembler
	Layouter      layout.Layouter
	LayoutOptions layout.Options
	Uploader      imagestore.Uploader
	Exclusions    map[string]bool
	Parse         document.Options
}

// Session owns the current snapshot.
type Session struct {
	// write serializes snapshot producers so merges never lose updates.
	write sync.Mutex

	mu      sync.RWMutex
	current graph.Snapshot
	version uint64

	assembler  *assemble.Assembler
	layouter   layout.Layouter
	layoutOpts layout.Options
	uploader   imagestore.Uploader
	exclusions map[string]bool
	parse      document.Options
}

// New creates a session with an empty snapshot.
func New(opts Options) *Session {
	s := &Session{
		current:    graph.Empty(),
		assembler:  opts.Assembler,
		layouter:   opts.Layouter,
		layoutOpts: opts.LayoutOptions,
		uploader:   opts.Uploader,
		exclusions: opts.Exclusions,
		parse:      opts.Parse,
	}
	if s.assembler == nil {
		s.assembler = assemble.New(assemble.Options{})
	}
	if s.layoutOpts == (layout.Options{}) {
		s.layoutOpts = layout.DefaultOptions()
	}
	if s.exclusions == nil {
		s.exclusions = flatten.DefaultExclusions()
	}
	return s
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Session) Snapshot() graph.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version increases every time a new snapshot is published.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) publish(snap graph.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.version++
	s.mu.Unlock()
}

// Ingest parses raw and applies it in the given mode. A parse failure returns
// an error wrapping document.ErrParse and leaves the snapshot untouched. An
// extraction miss is reported, not returned as an error, and likewise leaves
// the snapshot untouched.
func (s *Session) Ingest(ctx context.Context, raw []byte, mode Mode) (Report, error) {
	doc, err := document.Parse(raw, s.parse)
	if err != nil {
		return Report{}, err
	}
	return s.apply(ctx, doc, mode)
}

// LoadSample ingests the bundled sample graph.
func (s *Session) LoadSample(ctx context.Context, mode Mode) (Report, error) {
	return s.apply(ctx, gjson.ParseBytes(sampleGraph), mode)
}

func (s *Session) apply(ctx context.Context, doc gjson.Result, mode Mode) (Report, error) {
	s.write.Lock()
	defer s.write.Unlock()

	current := s.Snapshot()

	var (
		next graph.Snapshot
		res  assemble.Result
		err  error
	)
	switch mode {
	case ModeMerge:
		next, res, err = s.assembler.Merge(ctx, current, doc)
	case ModeOverwrite:
		next, res, err = s.assembler.Overwrite(ctx, doc)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return Report{}, fmt.Errorf("assembling graph: %w", err)
	}

	report := Report{
		Mode:       mode,
		Shape:      res.Shape,
		NodesAdded: len(res.Nodes),
		EdgesAdded: len(res.Edges),
		Miss:       res.Miss,
		Warnings:   res.Warnings,
	}

	if res.Miss {
		logger.Info("No recognizable entity in document", "mode", mode)
		report.TotalNodes = len(current.Nodes)
		report.TotalEdges = len(current.Edges)
		return report, nil
	}

	if s.layouter != nil && len(res.Nodes) > 0 {
		laidOut, err := layout.Apply(ctx, s.layouter, next, s.layoutOpts)
		if err != nil {
			logger.Warn("Layout failed, keeping fallback positions", "error", err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("layout failed, keeping fallback positions: %v", err))
		} else {
			next = laidOut
			report.LayoutApplied = true
		}
	}

	s.publish(next)
	report.TotalNodes = len(next.Nodes)
	report.TotalEdges = len(next.Edges)
	logger.Debug("Published snapshot", "mode", mode, "shape", res.Shape.String(), "nodes", report.TotalNodes, "edges", report.TotalEdges)
	return report, nil
}

// Details returns the flattened source document of a node.
func (s *Session) Details(id string) ([]flatten.Entry, bool) {
	node, ok := s.Snapshot().Node(id)
	if !ok {
		return nil, false
	}
	if len(node.Raw) == 0 {
		return []flatten.Entry{}, true
	}
	return flatten.Flatten(gjson.ParseBytes(node.Raw), s.exclusions), true
}

// AttachImage stores an image for a node and publishes a snapshot that
// references it. It returns the image URL.
func (s *Session) AttachImage(ctx context.Context, id, filename string, body []byte) (string, error) {
	if s.uploader == nil {
		return "", ErrNoUploader
	}

	s.write.Lock()
	defer s.write.Unlock()

	current := s.Snapshot()
	if _, ok := current.Node(id); !ok {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	url, err := s.uploader.Upload(ctx, id, filename, body)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	next := current.Clone()
	for i := range next.Nodes {
		if next.Nodes[i].ID == id {
			next.Nodes[i].ImageURL = url
		}
	}
	s.publish(next)
	return url, nil
}

// Restore publishes a previously saved snapshot as the current one.
func (s *Session) Restore(snap graph.Snapshot) {
	s.write.Lock()
	defer s.write.Unlock()
	s.publish(snap.Clone())
}

// Reset publishes an empty snapshot.
func (s *Session) Reset() {
	s.write.Lock()
	defer s.write.Unlock()
	s.publish(graph.Empty())
}
