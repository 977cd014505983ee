package index

import (
	"testing"

	"github.com/matsen/relgraph/internal/graph"
)

func sampleSnapshot() graph.Snapshot {
	return graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "BACK900101MDFSRR01", Kind: graph.KindPerson, Name: "Karime Bastar Carranza", Subtitle: "BACK900101MDFSRR01",
				Attributes: map[string]string{"secondaryId": "BACK900101AB1"}},
			{ID: "org-1", Kind: graph.KindOrganization, Name: "Comercializadora del Sureste"},
			{ID: "p-2", Kind: graph.KindPerson, Name: "José Pérez"},
		},
		Edges: []graph.Edge{},
	}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(sampleSnapshot())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSearch(t *testing.T) {
	idx := buildIndex(t)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"name term", "karime", []string{"BACK900101MDFSRR01"}},
		{"prefix", "comercial", []string{"org-1"}},
		{"accent insensitive", "jose perez", []string{"p-2"}},
		{"attribute value", "BACK900101AB1", []string{"BACK900101MDFSRR01"}},
		{"all terms required", "karime perez", nil},
		{"quotes are literal", `bastar"`, []string{"BACK900101MDFSRR01"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", tt.query, err)
			}
			if len(hits) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d hits, want %d: %+v", tt.query, len(hits), len(tt.wantIDs), hits)
			}
			for i, h := range hits {
				if h.ID != tt.wantIDs[i] {
					t.Errorf("hit %d = %s, want %s", i, h.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestSearch_HitFields(t *testing.T) {
	idx := buildIndex(t)

	hits, err := idx.Search("sureste", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Kind != graph.KindOrganization {
		t.Errorf("Kind = %s, want organization", hits[0].Kind)
	}
	if hits[0].Score <= 0 {
		t.Errorf("Score = %v, want positive", hits[0].Score)
	}
}

func TestSearch_Limit(t *testing.T) {
	snap := graph.Snapshot{}
	for _, id := range []string{"a", "b", "c"} {
		snap.Nodes = append(snap.Nodes, graph.Node{ID: id, Name: "Same Name"})
	}
	idx, err := Build(snap)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Search("same", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

func TestBuild_Empty(t *testing.T) {
	idx, err := Build(graph.Empty())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Search("anything", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits, want 0", len(hits))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"karime":       `"karime"*`,
		"a  b":         `"a"* "b"*`,
		`say "hi"`:     `"say"* """hi"""*`,
		"name:bastar*": `"name:bastar*"*`,
	}
	for in, want := range tests {
		if got := prepareFTSQuery(in); got != want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
