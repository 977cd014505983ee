package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/relgraph/internal/config"
	"github.com/matsen/relgraph/internal/document"
	"github.com/matsen/relgraph/internal/graph"
	"github.com/matsen/relgraph/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Viewport: config.Viewport{Width: 1200, NodeWidth: 180, NodeHeight: 80, Padding: 40},
		Canvas:   config.Canvas{CenterX: 400, CenterY: 300},
		Upload:   config.Upload{LocalDir: t.TempDir()},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"parse", fmt.Errorf("a.json: %w", document.ErrParse), ExitDataError},
		{"config", fmt.Errorf("%w: bad", config.ErrInvalid), ExitConfigError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIngestFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"curp": "BACK900101MDFSRR01", "nombre_completo": "KARIME BASTAR CARRANZA"}`)
	b := writeFile(t, dir, "b.json", `{"curp": "BACK900101MDFSRR01", "nombre_completo": "KARIME BASTAR CARRANZA"}`)

	sess, err := newSession(ctx, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	reports, err := ingestFiles(ctx, sess, []string{a, b}, session.ModeOverwrite)
	if err != nil {
		t.Fatalf("ingestFiles() error = %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Report.Mode != session.ModeOverwrite || reports[1].Report.Mode != session.ModeMerge {
		t.Errorf("modes = %s, %s; want overwrite, merge", reports[0].Report.Mode, reports[1].Report.Mode)
	}
	snap := sess.Snapshot()
	if len(snap.Nodes) != 2 || snap.Nodes[1].ID != "BACK900101MDFSRR01-1" {
		t.Errorf("unexpected nodes: %+v", snap.Nodes)
	}
}

func TestIngestFiles_ParseError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"nodes": [{"id": "a", "name": "A"}]}`)
	bad := writeFile(t, dir, "bad.json", `{"nodes": [`)

	sess, err := newSession(ctx, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	reports, err := ingestFiles(ctx, sess, []string{good, bad}, session.ModeOverwrite)
	if !errors.Is(err, document.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("error %q should name the file", err)
	}
	if len(reports) != 1 || len(sess.Snapshot().Nodes) != 1 {
		t.Errorf("the earlier file should stay applied")
	}
	if exitCode(err) != ExitDataError {
		t.Errorf("exitCode() = %d, want %d", exitCode(err), ExitDataError)
	}
}

func TestNewSession_LocalImages(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	sess, err := newSession(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Ingest(ctx, []byte(`{"nodes": [{"id": "a", "name": "A"}]}`), session.ModeOverwrite); err != nil {
		t.Fatal(err)
	}

	url, err := sess.AttachImage(ctx, "a", "face.png", []byte("png"))
	if err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("url = %q, want file:// URL", url)
	}
}

func TestNewExtractor(t *testing.T) {
	cfg := testConfig(t)
	if _, err := newExtractor(cfg); err != nil {
		t.Fatalf("default extractor: %v", err)
	}

	cfg.PathsFile = writeFile(t, t.TempDir(), "paths.yaml", "national_id: [\n")
	_, err := newExtractor(cfg)
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestNewLayouter(t *testing.T) {
	cfg := testConfig(t)
	if l := newLayouter(cfg); l != nil {
		t.Errorf("newLayouter() = %v, want nil without endpoint", l)
	}
	cfg.Layout = config.Layout{Endpoint: "http://localhost:9/layout", Timeout: 1, Rate: 1}
	if l := newLayouter(cfg); l == nil {
		t.Error("newLayouter() = nil with endpoint set")
	}
}

func TestRestoreSnapshot(t *testing.T) {
	dir := t.TempDir()
	sess := session.New(session.Options{})

	restored, err := restoreSnapshot(sess, filepath.Join(dir, "missing.json"))
	if err != nil || restored {
		t.Fatalf("missing file: restored=%v err=%v", restored, err)
	}

	path := filepath.Join(dir, "graph.json")
	saved := graph.Snapshot{Nodes: []graph.Node{{ID: "a", Kind: graph.KindPerson, Name: "A"}}, Edges: []graph.Edge{}}
	if err := graph.WriteFile(path, saved); err != nil {
		t.Fatal(err)
	}
	restored, err = restoreSnapshot(sess, path)
	if err != nil || !restored {
		t.Fatalf("restored=%v err=%v", restored, err)
	}
	if got := sess.Snapshot().Nodes; len(got) != 1 || got[0].ID != "a" {
		t.Errorf("snapshot nodes = %+v", got)
	}
}
