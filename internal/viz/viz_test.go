package viz

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matsen/relgraph/internal/graph"
)

func testSnapshot() graph.Snapshot {
	return graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Kind: graph.KindPerson, Name: "Karime <Bastar>", Position: graph.Position{X: 10, Y: 20}},
			{ID: "org", Kind: graph.KindOrganization, Name: "Comercializadora", ImageURL: "https://img/x.png"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "a", Target: "org", Label: "Socia", RelationKind: "business", Style: graph.StyleBusiness},
		},
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	out, err := ToCytoscapeJSON(testSnapshot())
	if err != nil {
		t.Fatalf("ToCytoscapeJSON failed: %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal([]byte(out), &elements); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(elements.Nodes) != 2 || len(elements.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges; want 2, 1", len(elements.Nodes), len(elements.Edges))
	}

	n := elements.Nodes[0]
	if n.Data.Label != "Karime <Bastar>" || n.Data.Type != graph.KindPerson {
		t.Errorf("node data = %+v", n.Data)
	}
	if n.Position != (graph.Position{X: 10, Y: 20}) {
		t.Errorf("position = %+v, want 10,20", n.Position)
	}
	if elements.Nodes[1].Data.Image != "https://img/x.png" {
		t.Errorf("image = %q", elements.Nodes[1].Data.Image)
	}
	if e := elements.Edges[0].Data; e.ID != "e1" || e.Style != graph.StyleBusiness {
		t.Errorf("edge data = %+v", e)
	}
}

func TestToCytoscapeJSON_Empty(t *testing.T) {
	out, err := ToCytoscapeJSON(graph.Empty())
	if err != nil {
		t.Fatalf("ToCytoscapeJSON failed: %v", err)
	}
	if out != `{"nodes":[],"edges":[]}` {
		t.Errorf("got %s", out)
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(testSnapshot(), DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		DefaultScriptURL,
		`node[type="person"]`,
		`node[type="organization"]`,
		`edge[style="business"]`,
		"#2980B9",
		`"preset"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(html, "<Bastar>") {
		t.Error("node label was not escaped")
	}
}

func TestGenerateHTML_Layouts(t *testing.T) {
	tests := []struct {
		layout string
		want   string
	}{
		{"", `"preset"`},
		{"force", `"cose"`},
		{"circle", `"circle"`},
		{"grid", `"grid"`},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = tt.layout
			html, err := GenerateHTML(testSnapshot(), opts)
			if err != nil {
				t.Fatalf("GenerateHTML failed: %v", err)
			}
			if !strings.Contains(html, "const layout = "+tt.want) {
				t.Errorf("layout %q not rendered as %s", tt.layout, tt.want)
			}
		})
	}

	if _, err := GenerateHTML(testSnapshot(), HTMLOptions{Layout: "spiral"}); err == nil {
		t.Error("expected error for invalid layout")
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(graph.Empty(), HTMLOptions{Title: "Casos"})
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}
	if !strings.Contains(html, "No graph data") || !strings.Contains(html, "Casos - Empty") {
		t.Errorf("unexpected empty-state HTML: %s", html)
	}
}

func TestGenerateHTML_DetailsURL(t *testing.T) {
	opts := DefaultOptions()
	opts.DetailsURL = "/api/nodes/"
	html, err := GenerateHTML(testSnapshot(), opts)
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}
	if strings.Contains(html, `const detailsURL = ""`) || !strings.Contains(html, "api") {
		t.Error("details URL not rendered")
	}
}
